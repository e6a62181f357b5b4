package btree

import "slices"

// Erase removes a key from the current state and reports whether it was
// present. Erasing an absent key is a no-op, not an error, and does not
// create a version.
//
// On the copy-on-write path the entry is tombstoned rather than physically
// removed, so the superseded version's payload is untouched and historical
// cuts still find the key. The in-place path removes the pair outright.
// Erase never shrinks the structure: leaves are allowed to underflow.
func (t *Tree[V]) Erase(key int64, inPlace bool) bool {
	tWrite := t.clock.Next()

	root := t.roots.current()
	if root == nil {
		return false
	}
	return t.eraseFrom(root, key, tWrite, inPlace)
}

func (t *Tree[V]) eraseFrom(n *node[V], key int64, tWrite uint64, inPlace bool) bool {
	if !n.leaf {
		cur := t.resolveMust(n, tWrite)
		return t.eraseFrom(cur.children[childIndex(cur.seps, key)], key, tWrite, inPlace)
	}

	// Check presence on the resolved head before writing anything, so a miss
	// stays a pure no-op.
	head := t.arena.at(n.headID())
	i, found := slices.BinarySearch(head.keys, key)
	if !found || head.dead[i] {
		return false
	}

	v := t.writable(n, tWrite, inPlace)
	if v.ts == tWrite {
		// Versioned write: tombstone, keep the pair.
		v.dead[i] = true
		return true
	}

	// In-place write: drop the pair physically.
	v.keys = slices.Delete(v.keys, i, i+1)
	v.vals = slices.Delete(v.vals, i, i+1)
	v.dead = slices.Delete(v.dead, i, i+1)
	return true
}
