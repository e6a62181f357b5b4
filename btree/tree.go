package btree

import (
	"errors"
	"fmt"
)

// MinBranchingFactor is the smallest legal branching factor.
const MinBranchingFactor = 3

// DefaultBranchingFactor matches the reference configuration of the engine.
const DefaultBranchingFactor = 4

// ErrInvalidBranchingFactor is returned by New for branching factors below
// MinBranchingFactor.
var ErrInvalidBranchingFactor = errors.New("branching factor must be at least 3")

// Tree is a versioned B-Tree over int64 keys and values of type V.
//
// The Clock and SnapshotTable are injected rather than owned so several
// trees can share one timestamp domain and tests can pin the starting
// timestamp. See the package documentation for the concurrency contract.
type Tree[V any] struct {
	branching int
	clock     *Clock
	snapshots *SnapshotTable

	arena arena[V]
	roots rootLog[V]
}

// New creates an empty tree. branching is the maximum number of children of
// an internal node and the maximum number of entries in a leaf.
func New[V any](branching int, clock *Clock, snapshots *SnapshotTable) (*Tree[V], error) {
	if branching < MinBranchingFactor {
		return nil, fmt.Errorf("btree: %w: got %d", ErrInvalidBranchingFactor, branching)
	}
	if clock == nil {
		clock = NewClock(0)
	}
	if snapshots == nil {
		snapshots = NewSnapshotTable()
	}
	return &Tree[V]{
		branching: branching,
		clock:     clock,
		snapshots: snapshots,
	}, nil
}

// Clock returns the tree's timestamp source.
func (t *Tree[V]) Clock() *Clock { return t.clock }

// Snapshots returns the tree's snapshot table.
func (t *Tree[V]) Snapshots() *SnapshotTable { return t.snapshots }

// BranchingFactor returns the configured branching factor.
func (t *Tree[V]) BranchingFactor() int { return t.branching }

// TakeSnapshot pins the current state under a fresh snapshot id. O(1): no
// structural copy happens, the id is bound to a timestamp and nothing else.
func (t *Tree[V]) TakeSnapshot() SnapshotID {
	id, _ := t.snapshots.Take(t.clock)
	return id
}

// ReleaseSnapshot drops a snapshot id. Subsequent queries against it fail
// with ErrUnknownSnapshot and the versions it pinned become reclaimable.
func (t *Tree[V]) ReleaseSnapshot(id SnapshotID) error {
	return t.snapshots.Release(id)
}

// asOf translates an optional snapshot id into the timestamp queries resolve
// against: the snapshot's pinned timestamp, or the current clock value.
func (t *Tree[V]) asOf(snapshot *SnapshotID) (uint64, error) {
	if snapshot == nil {
		return t.clock.Now(), nil
	}
	return t.snapshots.Lookup(*snapshot)
}

// writable returns a version of n that the current operation (stamped
// tWrite) may mutate freely:
//
//   - if the head is already stamped tWrite, this operation created it a
//     moment ago (e.g. a split touching its parent twice) and keeps editing
//     it — a chain never holds two versions with one timestamp;
//   - else, if the caller disabled versioning AND no live snapshot holds a
//     timestamp >= the head's, the head itself is mutated in place without
//     restamping (the ViB path). The snapshot check is enforced regardless
//     of the caller flag so a live snapshot silently upgrades to
//     copy-on-write instead of losing its cut;
//   - otherwise the head payload is copied and appended as a new version
//     stamped tWrite (the VoB / copy-on-write path).
func (t *Tree[V]) writable(n *node[V], tWrite uint64, inPlace bool) *version[V] {
	head := t.arena.at(n.headID())
	if head.ts == tWrite {
		return head
	}
	if inPlace && !t.snapshots.anyAtOrAfter(head.ts) {
		return head
	}
	return t.appendVersion(n, cloneVersion(head, tWrite))
}

// childIndex returns the child slot covering key given the separators:
// child i holds keys k with seps[i-1] <= k < seps[i].
func childIndex(seps []int64, key int64) int {
	lo, hi := 0, len(seps)
	for lo < hi {
		mid := (lo + hi) / 2
		if seps[mid] <= key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
