package bptree

import "fmt"

// Delete removes key from the tree and invokes the configured destructor
// (if any) on its value. It returns ErrNotFound if key is absent. Delete
// performs lookup and removal in a single write-locked descent, then
// walks upward rebalancing any node left under its minimum occupancy.
func (t *Tree[K, V]) Delete(key K) error {
	if isNilArg(key) {
		return fmt.Errorf("%w: key must not be nil", ErrInvalidArg)
	}

	leaf := t.descend(key, lockWrite)

	idx, found := findKey(leaf.keys, t.compare, key)
	if !found {
		leaf.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrNotFound, key)
	}

	rec := leaf.removeLeafAt(idx)
	if t.destroy != nil {
		t.destroy(rec.value)
	}

	t.rebalance(leaf)
	return nil
}

// rebalance restores minimum-occupancy after a removal from n. n must be
// write-locked on entry. If n is the root or already meets its minimum,
// rebalance unlocks n and returns. Otherwise it borrows a key from a
// sibling (redistribution) or folds n into a sibling (merge), cascading
// upward as necessary. Every node it visits is unlocked before it
// returns, including n itself.
func (t *Tree[K, V]) rebalance(n *node[K, V]) {
	for {
		parent := n.parent
		if parent == nil {
			// n is the root. A leaf root may be arbitrarily small. An
			// internal root that has lost its only remaining key is
			// demoted: its sole child becomes the new root.
			if !n.isLeaf && len(n.keys) == 0 {
				newRoot := n.children[0]
				newRoot.mu.Lock()
				newRoot.parent = nil
				t.setRoot(newRoot)
				n.mu.Unlock()
				newRoot.mu.Unlock()
				return
			}
			n.mu.Unlock()
			return
		}

		if len(n.keys) >= t.minFor(n) {
			n.mu.Unlock()
			return
		}

		// Lock siblings in a fixed left-to-right order to avoid deadlock
		// against a concurrent rebalance working the same sibling pair
		// from the other side.
		parent.mu.Lock()
		pos := childIndex(parent, n)

		var left, right *node[K, V]
		if pos > 0 {
			left = parent.children[pos-1]
			left.mu.Lock()
		}
		if pos < len(parent.children)-1 {
			right = parent.children[pos+1]
			right.mu.Lock()
		}

		switch {
		case left != nil && len(left.keys) > t.minFor(left):
			t.redistributeLeft(parent, pos, left, n)
			if right != nil {
				right.mu.Unlock()
			}
			parent.mu.Unlock()
			return
		case right != nil && len(right.keys) > t.minFor(right):
			t.redistributeRight(parent, pos, n, right)
			if left != nil {
				left.mu.Unlock()
			}
			parent.mu.Unlock()
			return
		case left != nil:
			if right != nil {
				right.mu.Unlock()
			}
			t.mergeInto(parent, pos-1, left, n)
			n = parent
			continue
		default:
			// right must be non-nil: every non-root node has at least
			// one sibling.
			t.mergeInto(parent, pos, n, right)
			n = parent
			continue
		}
	}
}

// redistributeLeft moves one entry from left (n's left sibling) into n,
// adjusting the separator key at parent.keys[sepIdx] = parent.keys[pos-1].
// left, n, and parent are all write-locked on entry; left and n are
// unlocked before returning (parent is left to the caller).
func (t *Tree[K, V]) redistributeLeft(parent *node[K, V], pos int, left, n *node[K, V]) {
	sepIdx := pos - 1

	if n.isLeaf {
		borrowIdx := len(left.keys) - 1
		key, rec := left.keys[borrowIdx], left.records[borrowIdx]
		left.removeLeafAt(borrowIdx)
		n.insertLeafAt(0, key, rec)
		parent.keys[sepIdx] = n.keys[0]
	} else {
		borrowChild := left.children[len(left.children)-1]
		borrowKey := left.keys[len(left.keys)-1]

		left.keys = left.keys[:len(left.keys)-1]
		left.children = left.children[:len(left.children)-1]

		n.keys = append(n.keys, parent.keys[sepIdx])
		copy(n.keys[1:], n.keys[:len(n.keys)-1])
		n.keys[0] = parent.keys[sepIdx]

		n.children = append(n.children, nil)
		copy(n.children[1:], n.children[:len(n.children)-1])
		n.children[0] = borrowChild
		borrowChild.parent = n

		parent.keys[sepIdx] = borrowKey
	}

	left.mu.Unlock()
	n.mu.Unlock()
}

// redistributeRight is the mirror of redistributeLeft: it moves one entry
// from right (n's right sibling) into n.
func (t *Tree[K, V]) redistributeRight(parent *node[K, V], pos int, n, right *node[K, V]) {
	sepIdx := pos

	if n.isLeaf {
		key, rec := right.keys[0], right.records[0]
		right.removeLeafAt(0)
		n.insertLeafAt(len(n.keys), key, rec)
		parent.keys[sepIdx] = right.keys[0]
	} else {
		borrowChild := right.children[0]
		borrowKey := right.keys[0]

		right.keys = right.keys[1:]
		right.children = right.children[1:]

		n.keys = append(n.keys, parent.keys[sepIdx])
		n.children = append(n.children, borrowChild)
		borrowChild.parent = n

		parent.keys[sepIdx] = borrowKey
	}

	right.mu.Unlock()
	n.mu.Unlock()
}

// mergeInto folds right into left, which sit at parent.children[sepIdx]
// and parent.children[sepIdx+1] respectively, removing the separator key
// at parent.keys[sepIdx]. left absorbs right's entries; right is
// discarded. left and right are write-locked on entry and are both
// unlocked before returning (parent is left to the caller, which must
// continue rebalancing it since it has just lost a key and a child).
func (t *Tree[K, V]) mergeInto(parent *node[K, V], sepIdx int, left, right *node[K, V]) {
	if left.isLeaf {
		left.keys = append(left.keys, right.keys...)
		left.records = append(left.records, right.records...)
		left.next = right.next
	} else {
		left.keys = append(left.keys, parent.keys[sepIdx])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
		for _, c := range left.children {
			c.parent = left
		}
	}

	parent.keys = append(parent.keys[:sepIdx], parent.keys[sepIdx+1:]...)
	parent.children = append(parent.children[:sepIdx+1], parent.children[sepIdx+2:]...)

	right.mu.Unlock()
	left.mu.Unlock()
}
