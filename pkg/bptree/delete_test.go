package bptree

import (
	"errors"
	"strconv"
	"testing"
)

func TestDeleteNotFound(t *testing.T) {
	tree := newIntTree(t, 4)
	if err := tree.Insert(1, "one"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Delete(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSingleKeyLeavesEmptyTree(t *testing.T) {
	tree := newIntTree(t, 4)
	if err := tree.Insert(1, "one"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := tree.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if _, ok, _ := tree.Find(1); ok {
		t.Fatal("deleted key still found")
	}
}

func TestDeleteInvokesDestructorExactlyOnce(t *testing.T) {
	destroyed := map[int]int{}
	tree, err := New[int, int](3, intCompare, func(v int) { destroyed[v]++ })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := tree.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	if err := tree.Delete(5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if destroyed[5] != 1 {
		t.Fatalf("destroyed[5] = %d, want 1", destroyed[5])
	}
	if _, ok := destroyed[3]; ok {
		t.Fatal("destructor invoked for a key that was never deleted")
	}
}

// TestDeleteCausesRedistributionAndMerge drives a small-order tree through
// enough inserts to build several internal levels, then deletes keys in an
// order chosen to force both redistribution (borrowing from a sibling with
// slack) and merging (when no sibling has slack), verifying every surviving
// key is still reachable and the deleted ones are gone after each step.
func TestDeleteCausesRedistributionAndMerge(t *testing.T) {
	tree := newIntTree(t, 3)

	const n = 50
	for i := 0; i < n; i++ {
		if err := tree.Insert(i, strconv.Itoa(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	deleted := map[int]bool{}
	del := func(k int) {
		if err := tree.Delete(k); err != nil {
			t.Fatalf("Delete(%d): %v", k, err)
		}
		deleted[k] = true

		for i := 0; i < n; i++ {
			v, ok, err := tree.Find(i)
			if err != nil {
				t.Fatalf("Find(%d) after deleting %d: %v", i, k, err)
			}
			if deleted[i] {
				if ok {
					t.Fatalf("key %d still found after being deleted (last deleted %d)", i, k)
				}
				continue
			}
			if !ok || v != strconv.Itoa(i) {
				t.Fatalf("key %d missing or corrupted after deleting %d: v=%q ok=%v", i, k, v, ok)
			}
		}
	}

	// Delete roughly every third key first (forces redistribution while
	// siblings still have slack), then sweep the rest in order (forces
	// cascading merges as occupancy drops).
	for i := 0; i < n; i += 3 {
		del(i)
	}
	for i := 0; i < n; i++ {
		if !deleted[i] {
			del(i)
		}
	}

	if got := tree.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0 after deleting every key", got)
	}
}

func TestDeleteAllThenReinsert(t *testing.T) {
	tree := newIntTree(t, 4)

	const n = 40
	for i := 0; i < n; i++ {
		if err := tree.Insert(i, strconv.Itoa(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		if err := tree.Delete(i); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
	}
	if got := tree.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}

	for i := n; i < n*2; i++ {
		if err := tree.Insert(i, strconv.Itoa(i)); err != nil {
			t.Fatalf("reinsert Insert(%d): %v", i, err)
		}
	}
	if got := tree.Len(); got != n {
		t.Fatalf("Len() = %d, want %d after reinsert", got, n)
	}
	for i := n; i < n*2; i++ {
		if _, ok, _ := tree.Find(i); !ok {
			t.Fatalf("reinserted key %d not found", i)
		}
	}
}
