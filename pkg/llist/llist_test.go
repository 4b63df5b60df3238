package llist

import (
	"reflect"
	"testing"
)

func TestPushBackAndToSlice(t *testing.T) {
	l := NewList[int]()
	for i := 1; i <= 5; i++ {
		l.PushBack(i)
	}

	if got := l.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}

	want := []int{1, 2, 3, 4, 5}
	if got := l.ToSlice(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ToSlice() = %v, want %v", got, want)
	}
}

func TestEmptyList(t *testing.T) {
	l := NewList[string]()
	if got := l.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if got := l.ToSlice(); len(got) != 0 {
		t.Fatalf("ToSlice() = %v, want empty", got)
	}
}

func TestEach(t *testing.T) {
	l := NewList[int]()
	l.PushBack(10)
	l.PushBack(20)
	l.PushBack(30)

	var sum int
	l.Each(func(v int) { sum += v })
	if sum != 60 {
		t.Fatalf("sum = %d, want 60", sum)
	}
}
