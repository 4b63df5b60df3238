package bptree

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"
)

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func newIntTree(t *testing.T, order int) *Tree[int, string] {
	t.Helper()
	tree, err := New[int, string](order, intCompare, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tree
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New[int, string](2, intCompare, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for order 2, got %v", err)
	}
	if _, err := New[int, string](4, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil comparator, got %v", err)
	}
}

func TestInsertAndFind(t *testing.T) {
	tree := newIntTree(t, 4)

	if err := tree.Insert(1, "one"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Insert(2, "two"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	v, ok, err := tree.Find(1)
	if err != nil || !ok || v != "one" {
		t.Fatalf("Find(1) = %q, %v, %v", v, ok, err)
	}

	_, ok, err = tree.Find(3)
	if err != nil {
		t.Fatalf("Find(3): %v", err)
	}
	if ok {
		t.Fatal("Find(3) should not find a key that was never inserted")
	}
}

func TestInsertDuplicateRejected(t *testing.T) {
	tree := newIntTree(t, 4)

	if err := tree.Insert(1, "one"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Insert(1, "uno"); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	v, ok, err := tree.Find(1)
	if err != nil || !ok || v != "one" {
		t.Fatalf("original value must survive a rejected duplicate insert, got %q, %v, %v", v, ok, err)
	}
}

func TestInsertRejectsNilKeyAndValue(t *testing.T) {
	type ptr struct{ n int }

	ptrTree, err := New[*ptr, *ptr](4, func(a, b *ptr) int { return intCompare(a.n, b.n) }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ptrTree.Insert(nil, &ptr{1}); !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("expected ErrInvalidArg for nil key, got %v", err)
	}
	if err := ptrTree.Insert(&ptr{1}, nil); !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("expected ErrInvalidArg for nil value, got %v", err)
	}
}

func TestSplitsGrowTreeAndPreserveAllKeys(t *testing.T) {
	tree := newIntTree(t, 3)

	const n = 200
	for i := 0; i < n; i++ {
		if err := tree.Insert(i, strconv.Itoa(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	if got := tree.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}

	for i := 0; i < n; i++ {
		v, ok, err := tree.Find(i)
		if err != nil || !ok || v != strconv.Itoa(i) {
			t.Fatalf("Find(%d) = %q, %v, %v", i, v, ok, err)
		}
	}
}

func TestInsertDescendingAndShuffledOrders(t *testing.T) {
	const n = 150

	descending := newIntTree(t, 4)
	for i := n - 1; i >= 0; i-- {
		if err := descending.Insert(i, strconv.Itoa(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	if got := descending.Len(); got != n {
		t.Fatalf("descending Len() = %d, want %d", got, n)
	}

	order := rand.New(rand.NewSource(42)).Perm(n)
	shuffled := newIntTree(t, 5)
	for _, k := range order {
		if err := shuffled.Insert(k, strconv.Itoa(k)); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if got := shuffled.Len(); got != n {
		t.Fatalf("shuffled Len() = %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		if _, ok, _ := shuffled.Find(i); !ok {
			t.Fatalf("shuffled tree missing key %d", i)
		}
	}
}

func TestCloseInvokesDestructorOnce(t *testing.T) {
	destroyed := map[int]int{}
	tree, err := New[int, int](3, intCompare, func(v int) {
		destroyed[v]++
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 30; i++ {
		if err := tree.Insert(i, i*10); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	tree.Close()

	if len(destroyed) != 30 {
		t.Fatalf("expected 30 distinct destroyed values, got %d", len(destroyed))
	}
	for v, count := range destroyed {
		if count != 1 {
			t.Fatalf("value %d destroyed %d times, want exactly once", v, count)
		}
	}
}
