package bptree

import (
	"fmt"

	"github.com/cedarkv/bptree/pkg/llist"
)

// Range writes every value whose key satisfies lo <= key <= hi, in
// ascending key order, into out, and returns the number of values
// written. If more values match than len(out) can hold, Range fills out
// completely and returns len(out); it does not allocate or report the
// true match count beyond that. Range is not a point-in-time snapshot:
// concurrent inserts or deletes may or may not be reflected in results
// for keys not yet visited when they occur.
func (t *Tree[K, V]) Range(lo, hi K, out []V) (int, error) {
	if isNilArg(lo) || isNilArg(hi) {
		return 0, fmt.Errorf("%w: bounds must not be nil", ErrInvalidArg)
	}
	if t.compare(lo, hi) > 0 {
		return 0, fmt.Errorf("%w: lo must not be greater than hi", ErrInvalidArg)
	}
	if len(out) == 0 {
		return 0, nil
	}

	leaf := t.descend(lo, lockRead)
	idx, _ := findKey(leaf.keys, t.compare, lo)

	n := 0
	for leaf != nil && n < len(out) {
		for idx < len(leaf.keys) {
			if t.compare(leaf.keys[idx], hi) > 0 {
				leaf.mu.RUnlock()
				return n, nil
			}
			out[n] = leaf.records[idx].value
			n++
			idx++
			if n == len(out) {
				leaf.mu.RUnlock()
				return n, nil
			}
		}

		next := leaf.next
		if next != nil {
			next.mu.RLock()
		}
		leaf.mu.RUnlock()
		leaf = next
		idx = 0
	}
	return n, nil
}

// RangeList behaves like Range but has no caller-supplied capacity: it
// collects every matching value, in ascending key order, into a fresh
// List and returns it.
func (t *Tree[K, V]) RangeList(lo, hi K) (*llist.List[V], error) {
	if isNilArg(lo) || isNilArg(hi) {
		return nil, fmt.Errorf("%w: bounds must not be nil", ErrInvalidArg)
	}
	if t.compare(lo, hi) > 0 {
		return nil, fmt.Errorf("%w: lo must not be greater than hi", ErrInvalidArg)
	}

	result := llist.NewList[V]()

	leaf := t.descend(lo, lockRead)
	idx, _ := findKey(leaf.keys, t.compare, lo)

	for leaf != nil {
		for idx < len(leaf.keys) {
			if t.compare(leaf.keys[idx], hi) > 0 {
				leaf.mu.RUnlock()
				return result, nil
			}
			result.PushBack(leaf.records[idx].value)
			idx++
		}

		next := leaf.next
		if next != nil {
			next.mu.RLock()
		}
		leaf.mu.RUnlock()
		leaf = next
		idx = 0
	}
	return result, nil
}

// SnapshotNode is a read-only view of one tree node, produced by
// Snapshot for collaborators (pkg/serialize, pkg/viz) that need to walk
// the whole tree structure rather than a key range. It is a detached
// copy: mutating it has no effect on the tree.
type SnapshotNode[K any, V any] struct {
	IsLeaf   bool
	Keys     []K
	Values   []V        // populated only when IsLeaf
	Children []*SnapshotNode[K, V]
	NextLeaf *SnapshotNode[K, V] // populated only when IsLeaf; nil at the end of the chain
}

// Snapshot walks the whole tree under read locks, node by node, and
// returns a detached copy of its structure rooted at SnapshotNode. It
// is not a point-in-time snapshot under concurrent mutation: different
// subtrees may be visited at different logical times.
func (t *Tree[K, V]) Snapshot() *SnapshotNode[K, V] {
	t.mu.RLock()
	root := t.root
	t.mu.RUnlock()

	leaves := map[*node[K, V]]*SnapshotNode[K, V]{}
	snap := t.snapshotNode(root, leaves)

	for orig, s := range leaves {
		if orig.next != nil {
			s.NextLeaf = leaves[orig.next]
		}
	}
	return snap
}

func (t *Tree[K, V]) snapshotNode(n *node[K, V], leaves map[*node[K, V]]*SnapshotNode[K, V]) *SnapshotNode[K, V] {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s := &SnapshotNode[K, V]{
		IsLeaf: n.isLeaf,
		Keys:   append([]K{}, n.keys...),
	}

	if n.isLeaf {
		s.Values = make([]V, len(n.records))
		for i, r := range n.records {
			s.Values[i] = r.value
		}
		leaves[n] = s
		return s
	}

	s.Children = make([]*SnapshotNode[K, V], len(n.children))
	children := append([]*node[K, V]{}, n.children...)
	n.mu.RUnlock()
	for i, c := range children {
		s.Children[i] = t.snapshotNode(c, leaves)
	}
	n.mu.RLock()
	return s
}
