package bptree

import "fmt"

// Insert adds key/value to the tree. If key is already present, Insert
// returns ErrDuplicateKey and the caller retains ownership of value (the
// tree never takes it). Insert performs duplicate detection and insertion
// in a single write-locked descent.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if isNilArg(key) {
		return fmt.Errorf("%w: key must not be nil", ErrInvalidArg)
	}
	if isNilArg(value) {
		return fmt.Errorf("%w: value must not be nil", ErrInvalidArg)
	}

	leaf := t.descend(key, lockWrite)

	idx, found := findKey(leaf.keys, t.compare, key)
	if found {
		leaf.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}

	leaf.insertLeafAt(idx, key, &record[V]{value: value})

	if len(leaf.keys) < t.order {
		leaf.mu.Unlock()
		return nil
	}

	t.splitLeaf(leaf)
	return nil
}

// splitLeaf splits an overfull leaf in two and propagates the new
// separator into the parent. leaf must be write-locked on entry. Hand-
// over-hand descent releases every ancestor lock on the way down, so by
// the time a leaf split begins no ancestor lock is held; splitLeaf
// acquires the parent's write lock itself (and the new sibling's, per
// the insert-split locking discipline) before leaf is unlocked, so a
// concurrent split sharing the same parent can never observe a
// half-updated parent.keys/children. leaf, right, and every node
// visited during propagation are unlocked before splitLeaf returns.
func (t *Tree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	right := newLeaf[K, V]()
	right.mu.Lock()
	right.keys = append(right.keys, leaf.keys[mid:]...)
	right.records = append(right.records, leaf.records[mid:]...)
	right.next = leaf.next
	right.parent = leaf.parent

	leaf.keys = leaf.keys[:mid]
	leaf.records = leaf.records[:mid]
	leaf.next = right

	sepKey := right.keys[0]
	parent := leaf.parent
	if parent != nil {
		parent.mu.Lock()
	}
	leaf.mu.Unlock()

	t.insertIntoParent(parent, leaf, sepKey, right)
}

// insertIntoParent inserts sepKey/right as the new separator/child pair
// following left in parent. If parent is nil, left was the root and a
// fresh internal root is created above both halves. parent, if non-nil,
// must already be write-locked by the caller, acquired right before the
// caller released its own lock so no window exists where parent sits
// unlocked between the split and this mutation. right must also already
// be write-locked by the caller; insertIntoParent unlocks both parent
// (unless it cascades into splitInternal, which takes over that duty)
// and right before returning.
func (t *Tree[K, V]) insertIntoParent(parent *node[K, V], left *node[K, V], sepKey K, right *node[K, V]) {
	if parent == nil {
		newRoot := newInternal[K, V](
			[]K{sepKey},
			[]*node[K, V]{left, right},
		)
		left.parent = newRoot
		right.parent = newRoot
		t.setRoot(newRoot)
		right.mu.Unlock()
		return
	}

	idx := childIndex(parent, left)
	parent.keys = append(parent.keys, sepKey)
	copy(parent.keys[idx+1:], parent.keys[idx:])
	parent.keys[idx] = sepKey

	parent.children = append(parent.children, nil)
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = right
	right.parent = parent
	right.mu.Unlock()

	if len(parent.keys) < t.order {
		parent.mu.Unlock()
		return
	}

	t.splitInternal(parent)
}

// splitInternal splits an overfull internal node, pulling the median key
// up into the parent as the new separator (the median key itself is not
// duplicated into either half, per standard B+ tree internal-split
// semantics). internal must be write-locked on entry; like splitLeaf, it
// acquires its own parent's write lock (and the new sibling's) before
// releasing internal, so the cascade never leaves a parent unlocked
// between levels. internal, right, and every node visited in
// propagation are unlocked before this returns.
func (t *Tree[K, V]) splitInternal(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	sepKey := internal.keys[mid]

	right := newInternal[K, V](
		append([]K{}, internal.keys[mid+1:]...),
		append([]*node[K, V]{}, internal.children[mid+1:]...),
	)
	right.mu.Lock()
	right.parent = internal.parent
	for _, c := range right.children {
		c.parent = right
	}

	internal.keys = internal.keys[:mid]
	internal.children = internal.children[:mid+1]

	parent := internal.parent
	if parent != nil {
		parent.mu.Lock()
	}
	internal.mu.Unlock()

	t.insertIntoParent(parent, internal, sepKey, right)
}
