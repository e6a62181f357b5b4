package btree

import "slices"

// splitResult carries a freshly created right sibling and the separator key
// to push into the parent.
type splitResult[V any] struct {
	sep   int64
	right *node[V]
}

// Insert writes a key/value pair, overwriting any existing value for the
// key. It reports the value previously visible at the destination (existed
// is false for fresh inserts and revived tombstones). Insert subsumes
// update: inserting an existing key is never an error.
//
// inPlace requests the non-versioned (ViB) path; it is honored only when no
// live snapshot could observe the superseded payload.
func (t *Tree[V]) Insert(key int64, value V, inPlace bool) (prev V, existed bool) {
	tWrite := t.clock.Next()

	root := t.roots.current()
	if root == nil {
		leaf := newNode[V](true)
		t.appendVersion(leaf, version[V]{
			ts:   tWrite,
			keys: []int64{key},
			vals: []V{value},
			dead: []bool{false},
		})
		t.roots.push(tWrite, leaf)
		return prev, false
	}

	prev, existed, split := t.insertInto(root, key, value, tWrite, inPlace)
	if split != nil {
		newRoot := newNode[V](false)
		t.appendVersion(newRoot, version[V]{
			ts:       tWrite,
			seps:     []int64{split.sep},
			children: []*node[V]{root, split.right},
		})
		t.roots.push(tWrite, newRoot)
	}
	return prev, existed
}

func (t *Tree[V]) insertInto(n *node[V], key int64, value V, tWrite uint64, inPlace bool) (prev V, existed bool, split *splitResult[V]) {
	if n.leaf {
		v := t.writable(n, tWrite, inPlace)
		prev, existed = leafPut(v, key, value)
		if len(v.keys) > t.branching {
			split = t.splitLeaf(v, tWrite)
		}
		return prev, existed, split
	}

	cur := t.resolveMust(n, tWrite)
	idx := childIndex(cur.seps, key)
	prev, existed, childSplit := t.insertInto(cur.children[idx], key, value, tWrite, inPlace)
	if childSplit == nil {
		return prev, existed, nil
	}

	// The child overflowed: record the separator and the new sibling in this
	// node, which may overflow in turn.
	v := t.writable(n, tWrite, inPlace)
	v.seps = slices.Insert(v.seps, idx, childSplit.sep)
	v.children = slices.Insert(v.children, idx+1, childSplit.right)
	if len(v.children) > t.branching {
		split = t.splitInternal(v, tWrite)
	}
	return prev, existed, split
}

// leafPut inserts or overwrites key in the (mutable) leaf version v.
func leafPut[V any](v *version[V], key int64, value V) (prev V, existed bool) {
	i, found := slices.BinarySearch(v.keys, key)
	if found {
		if !v.dead[i] {
			prev, existed = v.vals[i], true
		}
		v.vals[i] = value
		v.dead[i] = false
		return prev, existed
	}
	v.keys = slices.Insert(v.keys, i, key)
	v.vals = slices.Insert(v.vals, i, value)
	v.dead = slices.Insert(v.dead, i, false)
	return prev, false
}

// splitLeaf moves the upper half of v (tombstones included) into a fresh
// sibling node whose chain starts at tWrite. Older versions of the leaf keep
// the full payload, so historical cuts still see the pre-split layout through
// the parent version that was current then.
func (t *Tree[V]) splitLeaf(v *version[V], tWrite uint64) *splitResult[V] {
	mid := len(v.keys) / 2
	sep := v.keys[mid]

	right := newNode[V](true)
	t.appendVersion(right, version[V]{
		ts:   tWrite,
		keys: slices.Clone(v.keys[mid:]),
		vals: slices.Clone(v.vals[mid:]),
		dead: slices.Clone(v.dead[mid:]),
	})

	v.keys = v.keys[:mid]
	v.vals = v.vals[:mid]
	v.dead = v.dead[:mid]
	return &splitResult[V]{sep: sep, right: right}
}

// splitInternal promotes the middle separator of v and moves the upper
// separators and children into a fresh sibling.
func (t *Tree[V]) splitInternal(v *version[V], tWrite uint64) *splitResult[V] {
	mid := len(v.seps) / 2
	sep := v.seps[mid]

	right := newNode[V](false)
	t.appendVersion(right, version[V]{
		ts:       tWrite,
		seps:     slices.Clone(v.seps[mid+1:]),
		children: slices.Clone(v.children[mid+1:]),
	})

	v.seps = v.seps[:mid]
	v.children = v.children[:mid+1]
	return &splitResult[V]{sep: sep, right: right}
}
