package btree

import (
	"slices"
	"sync/atomic"
)

// version is one immutable payload snapshot of a node's contents.
// Leaves carry keys/vals/dead in parallel; internal nodes carry seps and
// children with len(children) == len(seps)+1. A version is owned by exactly
// one chain and never shared across nodes.
type version[V any] struct {
	ts    uint64
	older VersionID

	// leaf payload
	keys []int64
	vals []V
	dead []bool // tombstones: key erased in this version, retained for older cuts

	// internal payload
	seps     []int64
	children []*node[V]
}

// node is a B-Tree node identity. Its entire mutable state is the id of its
// chain head; the head is stored atomically so snapshot readers can resolve
// chains without locks.
type node[V any] struct {
	leaf bool
	head atomic.Uint32
}

func newNode[V any](leaf bool) *node[V] {
	n := &node[V]{leaf: leaf}
	n.head.Store(uint32(noVersion))
	return n
}

func (n *node[V]) headID() VersionID {
	return VersionID(n.head.Load())
}

// resolve scans the chain from the head and returns the first version with
// ts <= asOf, or nil if the node did not exist at asOf. A nil result is only
// legitimate at the root (the tree was empty then); anywhere else the caller
// uses resolveMust.
func (t *Tree[V]) resolve(n *node[V], asOf uint64) *version[V] {
	for id := n.headID(); id != noVersion; {
		v := t.arena.at(id)
		if v.ts <= asOf {
			return v
		}
		id = v.older
	}
	return nil
}

// resolveMust is resolve for nodes that are structurally guaranteed to have
// a visible version at asOf. A miss is a construction bug.
func (t *Tree[V]) resolveMust(n *node[V], asOf uint64) *version[V] {
	v := t.resolve(n, asOf)
	if v == nil {
		panic(invariantf("resolve", "no version visible at timestamp %d", asOf))
	}
	return v
}

// appendVersion publishes rec as the new chain head of n. The record is
// fully constructed in the arena before the head pointer moves
// (publish-after-construct), so concurrent snapshot readers never observe a
// partial version. Timestamps within a chain must be strictly decreasing
// front-to-back.
func (t *Tree[V]) appendVersion(n *node[V], rec version[V]) *version[V] {
	head := n.headID()
	if head != noVersion {
		if h := t.arena.at(head); rec.ts <= h.ts {
			panic(invariantf("append", "non-increasing timestamp %d onto head %d", rec.ts, h.ts))
		}
	}
	rec.older = head
	id := t.arena.alloc(rec)
	n.head.Store(uint32(id))
	return t.arena.at(id)
}

// chainLen returns the number of versions in n's chain.
func (t *Tree[V]) chainLen(n *node[V]) int {
	count := 0
	for id := n.headID(); id != noVersion; {
		count++
		id = t.arena.at(id).older
	}
	return count
}

// cloneVersion copies v's payload into a fresh record stamped ts, for the
// copy-on-write path. Slices are cloned so the superseded version stays
// untouched; child pointers are node identities and are shared on purpose.
func cloneVersion[V any](v *version[V], ts uint64) version[V] {
	return version[V]{
		ts:       ts,
		keys:     slices.Clone(v.keys),
		vals:     slices.Clone(v.vals),
		dead:     slices.Clone(v.dead),
		seps:     slices.Clone(v.seps),
		children: slices.Clone(v.children),
	}
}
