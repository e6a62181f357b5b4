package mvbtree

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/checkpoint"
	"github.com/hupe1980/mvbtree/reclaim"
)

// MVBTree is a thread-safe multiversion B-tree.
//
// A single mutex serializes writers. Current-state reads share it as
// readers. Snapshot-bound reads (AtSnapshot) bypass the lock entirely:
// the version chains they descend are immutable once a snapshot pins them.
type MVBTree[V any] struct {
	mu      sync.RWMutex
	tree    *btree.Tree[V]
	logger  *Logger
	metrics MetricsCollector
}

// Entry is a key/value pair returned by range queries.
type Entry[V any] = btree.Entry[V]

// Stats summarizes the physical shape of the tree.
type Stats = btree.Stats

// Insert stores value under key and returns the previous value if the key
// was live.
func (t *MVBTree[V]) Insert(ctx context.Context, key int64, value V, optFns ...OpOption) (prev V, existed bool) {
	o := applyOpOptions(optFns)
	start := time.Now()

	t.mu.Lock()
	prev, existed = t.tree.Insert(key, value, o.inPlace)
	t.mu.Unlock()

	t.metrics.RecordInsert(time.Since(start), existed)
	t.logger.LogInsert(ctx, key, existed, o.inPlace)
	return prev, existed
}

// Erase removes key and reports whether it was present. Erasing an absent
// key changes nothing, not even the clock-visible state of the tree.
func (t *MVBTree[V]) Erase(ctx context.Context, key int64, optFns ...OpOption) bool {
	o := applyOpOptions(optFns)
	start := time.Now()

	t.mu.Lock()
	existed := t.tree.Erase(key, o.inPlace)
	t.mu.Unlock()

	t.metrics.RecordErase(time.Since(start), existed)
	t.logger.LogErase(ctx, key, existed)
	return existed
}

// Find returns the value stored under key. With AtSnapshot the lookup runs
// against the snapshot's state and without taking the tree lock; it returns
// ErrUnknownSnapshot if the snapshot is not live.
func (t *MVBTree[V]) Find(ctx context.Context, key int64, optFns ...QueryOption) (V, bool, error) {
	o := applyQueryOptions(optFns)
	start := time.Now()

	var (
		v     V
		found bool
		err   error
	)
	if o.snapshot != nil {
		v, found, err = t.tree.FindAt(key, *o.snapshot)
	} else {
		t.mu.RLock()
		v, found = t.tree.Find(key)
		t.mu.RUnlock()
	}

	t.metrics.RecordFind(time.Since(start), found)
	return v, found, err
}

// RangeQuery returns all live entries with lo <= key < hi in ascending key
// order. The result reflects one consistent state of the tree.
func (t *MVBTree[V]) RangeQuery(ctx context.Context, lo, hi int64, optFns ...QueryOption) ([]Entry[V], error) {
	o := applyQueryOptions(optFns)
	start := time.Now()

	var (
		entries []Entry[V]
		err     error
	)
	if o.snapshot != nil {
		entries, err = t.tree.RangeQueryAt(lo, hi, *o.snapshot)
	} else {
		t.mu.RLock()
		entries = t.tree.RangeQuery(lo, hi)
		t.mu.RUnlock()
	}

	t.metrics.RecordRangeQuery(len(entries), time.Since(start))
	t.logger.LogRangeQuery(ctx, lo, hi, len(entries))
	return entries, err
}

// Keys returns all live keys in ascending order.
func (t *MVBTree[V]) Keys(ctx context.Context, optFns ...QueryOption) ([]int64, error) {
	o := applyQueryOptions(optFns)

	if o.snapshot != nil {
		return t.tree.KeysAt(*o.snapshot)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Keys(), nil
}

// TakeSnapshot captures the current state of the tree in O(1) and returns
// a handle for snapshot-bound reads.
func (t *MVBTree[V]) TakeSnapshot(ctx context.Context) SnapshotID {
	t.mu.Lock()
	id := t.tree.TakeSnapshot()
	t.mu.Unlock()

	t.metrics.RecordSnapshot(false)
	t.logger.LogSnapshot(ctx, "taken", uint64(id), nil)
	return id
}

// ReleaseSnapshot drops a snapshot, unpinning the node versions it was
// holding for future reclamation.
func (t *MVBTree[V]) ReleaseSnapshot(ctx context.Context, id SnapshotID) error {
	t.mu.Lock()
	err := t.tree.ReleaseSnapshot(id)
	t.mu.Unlock()

	if err == nil {
		t.metrics.RecordSnapshot(true)
	}
	t.logger.LogSnapshot(ctx, "released", uint64(id), err)
	return err
}

// Stats summarizes node, key and version counts.
func (t *MVBTree[V]) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Stats()
}

// Dump writes a human-readable rendering of the tree to w.
func (t *MVBTree[V]) Dump(w io.Writer, optFns ...QueryOption) error {
	o := applyQueryOptions(optFns)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if o.snapshot != nil {
		return t.tree.DumpAt(w, *o.snapshot)
	}
	return t.tree.Dump(w)
}

// ExportState captures the complete logical state of the tree for
// serialization. The export holds copies; later mutations don't leak into it.
func (t *MVBTree[V]) ExportState() *btree.TreeState[V] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.ExportState()
}

// SaveCheckpoint publishes the current state through the checkpoint manager
// and returns the blob name.
func (t *MVBTree[V]) SaveCheckpoint(ctx context.Context, m *checkpoint.Manager) (string, error) {
	state := t.ExportState()

	name, err := checkpoint.Publish(ctx, m, state)
	t.logger.LogCheckpoint(ctx, name, err)
	return name, err
}

// ScanReclaimable walks the version chains and returns the ids of versions
// no live snapshot or current read can still observe. The scan holds the
// read lock, so it serializes with writers but not with other readers.
func (t *MVBTree[V]) ScanReclaimable(ctx context.Context, tracker *reclaim.Tracker) (*reclaim.Bitmap, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return tracker.Scan(ctx, t.tree, t.tree.Snapshots())
}
