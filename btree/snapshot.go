package btree

import (
	"slices"
	"sync"
)

// SnapshotID identifies a snapshot issued by a SnapshotTable. IDs are
// sequential starting at 1.
type SnapshotID uint64

// SnapshotTable maps live snapshot ids to the timestamp in effect when each
// snapshot was taken. It holds timestamp values only, never references into
// node chains, so snapshot validity is purely arithmetic.
//
// SnapshotTable is safe for concurrent use.
type SnapshotTable struct {
	mu     sync.RWMutex
	nextID SnapshotID
	live   map[SnapshotID]uint64
}

// NewSnapshotTable creates an empty snapshot table.
func NewSnapshotTable() *SnapshotTable {
	return &SnapshotTable{
		nextID: 1,
		live:   make(map[SnapshotID]uint64),
	}
}

// Take advances the clock and records the new timestamp under a fresh id.
// The clock increment and the table publish happen under the table's lock so
// the pair is atomic as a unit: no write can slip between them and
// retroactively land inside the snapshot.
func (st *SnapshotTable) Take(clock *Clock) (SnapshotID, uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts := clock.Next()
	id := st.nextID
	st.nextID++
	st.live[id] = ts
	return id, ts
}

// Lookup translates a snapshot id into its pinned timestamp.
// Returns ErrUnknownSnapshot for ids never issued or already released.
func (st *SnapshotTable) Lookup(id SnapshotID) (uint64, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ts, ok := st.live[id]
	if !ok {
		return 0, ErrUnknownSnapshot
	}
	return ts, nil
}

// Release drops a snapshot, unpinning every version only it kept alive.
// A released id behaves exactly like one that was never issued.
func (st *SnapshotTable) Release(id SnapshotID) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.live[id]; !ok {
		return ErrUnknownSnapshot
	}
	delete(st.live, id)
	return nil
}

// Count returns the number of live snapshots.
func (st *SnapshotTable) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.live)
}

// LiveTimestamps returns the timestamps of all live snapshots in ascending
// order. Intended for reclamation scans and introspection.
func (st *SnapshotTable) LiveTimestamps() []uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]uint64, 0, len(st.live))
	for _, ts := range st.live {
		out = append(out, ts)
	}
	slices.Sort(out)
	return out
}

// AnyInRange reports whether any live snapshot timestamp t satisfies
// lo <= t <= hi. A version superseded at hi+1 is pinned exactly when this
// holds for its visibility window.
func (st *SnapshotTable) AnyInRange(lo, hi uint64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, ts := range st.live {
		if ts >= lo && ts <= hi {
			return true
		}
	}
	return false
}

// anyAtOrAfter reports whether any live snapshot could observe a version
// stamped ts, i.e. holds a timestamp >= ts. Used for in-place eligibility.
func (st *SnapshotTable) anyAtOrAfter(ts uint64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, t := range st.live {
		if t >= ts {
			return true
		}
	}
	return false
}
