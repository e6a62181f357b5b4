// Package reclaim decides which version records are no longer reachable
// from the current state or any live snapshot.
//
// The engine itself never drops versions; correctness does not depend on
// reclaiming anything promptly. This package answers the reclaimability
// question and collects candidates so a caller-supplied Reclaimer (an epoch
// or refcount scheme in a production deployment) can be plugged in.
package reclaim

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/mvbtree/btree"
)

// Bitmap holds arena version ids. It is a roaring bitmap so million-version
// scans stay compact.
type Bitmap = roaring.Bitmap

// Reclaimer retires version records that Scan proved unreachable.
type Reclaimer interface {
	// Reclaim receives the arena ids of reclaimable versions. It must
	// tolerate being handed the same id across successive scans.
	Reclaim(ctx context.Context, ids *roaring.Bitmap) error
}

// Noop is a Reclaimer that drops nothing. It is the default: the design
// never requires reclamation to happen.
type Noop struct{}

// Reclaim implements Reclaimer.
func (Noop) Reclaim(context.Context, *roaring.Bitmap) error { return nil }

// IsReclaimable reports whether a version can be retired: it must not be its
// chain's head (the head is always visible to the current state), and no
// live snapshot timestamp may fall inside its visibility window
// [Timestamp, SuccessorTimestamp-1].
func IsReclaimable(info btree.VersionInfo, snapshots *btree.SnapshotTable) bool {
	if info.IsHead {
		return false
	}
	return !snapshots.AnyInRange(info.Timestamp, info.SuccessorTimestamp-1)
}
