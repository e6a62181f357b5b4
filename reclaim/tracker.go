package reclaim

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/resource"
)

// VersionSource is the slice of the tree the tracker needs: a walk over
// every version record. *btree.Tree[V] satisfies it for any V.
type VersionSource interface {
	WalkVersions(fn func(btree.VersionInfo) bool)
}

// scanBatch is how many versions a scan visits between throughput acquires.
const scanBatch = 256

// Tracker collects reclaimable version ids into a roaring bitmap.
type Tracker struct {
	controller *resource.Controller
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithController paces scans through the given resource controller, counting
// one throughput unit per visited version.
func WithController(c *resource.Controller) TrackerOption {
	return func(t *Tracker) { t.controller = c }
}

// NewTracker creates a Tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Scan walks every version of src and returns the ids of those reclaimable
// against the given snapshot table. Scan holds a background worker slot for
// its duration when a controller is configured.
//
// Scan must be serialized with writers (it reads chain structure), like any
// current-state read.
func (t *Tracker) Scan(ctx context.Context, src VersionSource, snapshots *btree.SnapshotTable) (*roaring.Bitmap, error) {
	if err := t.controller.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer t.controller.ReleaseWorker()

	ids := roaring.New()
	visited := 0
	var scanErr error
	src.WalkVersions(func(info btree.VersionInfo) bool {
		if visited%scanBatch == 0 {
			if err := ctx.Err(); err != nil {
				scanErr = err
				return false
			}
			if err := t.controller.Acquire(ctx, scanBatch); err != nil {
				scanErr = err
				return false
			}
		}
		visited++
		if IsReclaimable(info, snapshots) {
			ids.Add(uint32(info.ID))
		}
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return ids, nil
}
