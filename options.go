package mvbtree

import "github.com/hupe1980/mvbtree/btree"

// SnapshotID identifies a live snapshot.
type SnapshotID = btree.SnapshotID

// OpOption configures a single mutation.
type OpOption func(*opOptions)

type opOptions struct {
	inPlace bool
}

// InPlace requests that the mutation update the newest node versions
// directly instead of appending new ones. The request is honored per node
// and only when no live snapshot could observe the change; pinned nodes
// fall back to copy-on-write. Use it for bulk loads and hot-key churn
// where version history is not worth its memory.
func InPlace() OpOption {
	return func(o *opOptions) {
		o.inPlace = true
	}
}

func applyOpOptions(optFns []OpOption) opOptions {
	var o opOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// QueryOption configures a single read.
type QueryOption func(*queryOptions)

type queryOptions struct {
	snapshot *SnapshotID
}

// AtSnapshot evaluates the read against the state the tree had when the
// snapshot was taken. Snapshot-bound reads never block the writer.
func AtSnapshot(id SnapshotID) QueryOption {
	return func(o *queryOptions) {
		o.snapshot = &id
	}
}

func applyQueryOptions(optFns []QueryOption) queryOptions {
	var o queryOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
