package btree

import "slices"

// Entry is a key/value pair returned by range queries.
type Entry[V any] struct {
	Key   int64
	Value V
}

// Find looks a key up in the current state.
func (t *Tree[V]) Find(key int64) (V, bool) {
	return t.findAsOf(key, t.clock.Now())
}

// FindAt looks a key up in the cut pinned by the given snapshot.
// Fails with ErrUnknownSnapshot if the id was never issued or was released.
func (t *Tree[V]) FindAt(key int64, snap SnapshotID) (V, bool, error) {
	asOf, err := t.snapshots.Lookup(snap)
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := t.findAsOf(key, asOf)
	return v, ok, nil
}

// findAsOf descends from the root in effect at asOf, resolving every node's
// chain independently at asOf. Independent per-node resolution is what makes
// historical lookups land on one consistent cut.
func (t *Tree[V]) findAsOf(key int64, asOf uint64) (V, bool) {
	var zero V
	n := t.roots.at(asOf)
	if n == nil {
		return zero, false // the tree was empty at asOf
	}
	for {
		v := t.resolveMust(n, asOf)
		if n.leaf {
			i, found := slices.BinarySearch(v.keys, key)
			if !found || v.dead[i] {
				return zero, false
			}
			return v.vals[i], true
		}
		n = v.children[childIndex(v.seps, key)]
	}
}

// RangeQuery returns the entries with lo <= key < hi in the current state,
// ascending by key.
func (t *Tree[V]) RangeQuery(lo, hi int64) []Entry[V] {
	return t.rangeAsOf(lo, hi, t.clock.Now())
}

// RangeQueryAt returns the entries with lo <= key < hi in the cut pinned by
// the given snapshot, ascending by key.
func (t *Tree[V]) RangeQueryAt(lo, hi int64, snap SnapshotID) ([]Entry[V], error) {
	asOf, err := t.snapshots.Lookup(snap)
	if err != nil {
		return nil, err
	}
	return t.rangeAsOf(lo, hi, asOf), nil
}

// rangeAsOf traverses the tree as it existed at asOf: every node consulted
// is resolved at the identical timestamp, so the result set is exactly the
// keys present at that one instant with no interleaving from later writes.
func (t *Tree[V]) rangeAsOf(lo, hi int64, asOf uint64) []Entry[V] {
	out := []Entry[V]{}
	if lo >= hi {
		return out
	}
	root := t.roots.at(asOf)
	if root == nil {
		return out
	}
	t.rangeInto(root, lo, hi, asOf, &out)
	return out
}

func (t *Tree[V]) rangeInto(n *node[V], lo, hi int64, asOf uint64, out *[]Entry[V]) {
	v := t.resolveMust(n, asOf)
	if n.leaf {
		for i, k := range v.keys {
			if k >= hi {
				break
			}
			if k >= lo && !v.dead[i] {
				*out = append(*out, Entry[V]{Key: k, Value: v.vals[i]})
			}
		}
		return
	}
	for i, child := range v.children {
		if i > 0 && v.seps[i-1] >= hi {
			break // child covers keys >= seps[i-1], all past the range
		}
		if i < len(v.seps) && v.seps[i] <= lo {
			continue // child covers keys < seps[i], all before the range
		}
		t.rangeInto(child, lo, hi, asOf, out)
	}
}

// Keys lists every live key in the current state, ascending.
func (t *Tree[V]) Keys() []int64 {
	return t.keysAsOf(t.clock.Now())
}

// KeysAt lists every live key in the cut pinned by the given snapshot.
func (t *Tree[V]) KeysAt(snap SnapshotID) ([]int64, error) {
	asOf, err := t.snapshots.Lookup(snap)
	if err != nil {
		return nil, err
	}
	return t.keysAsOf(asOf), nil
}

func (t *Tree[V]) keysAsOf(asOf uint64) []int64 {
	out := []int64{}
	root := t.roots.at(asOf)
	if root == nil {
		return out
	}
	t.keysInto(root, asOf, &out)
	return out
}

func (t *Tree[V]) keysInto(n *node[V], asOf uint64, out *[]int64) {
	v := t.resolveMust(n, asOf)
	if n.leaf {
		for i, k := range v.keys {
			if !v.dead[i] {
				*out = append(*out, k)
			}
		}
		return
	}
	for _, child := range v.children {
		t.keysInto(child, asOf, out)
	}
}
