// This file implements the fluent builder API for creating MVBTree instances.
// Builders are immutable - each method returns a new builder with the updated
// configuration.
package mvbtree

import (
	"context"

	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/checkpoint"
)

// New creates a tree builder with default configuration.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	db, err := mvbtree.New[string]().
//	    BranchingFactor(32).
//	    Logger(mvbtree.NewTextLogger(slog.LevelDebug)).
//	    Build()
func New[V any]() Builder[V] {
	return Builder[V]{
		branching: btree.DefaultBranchingFactor,
	}
}

// Builder is an immutable fluent builder for creating MVBTree instances.
// Each method returns a new builder with the updated configuration.
type Builder[V any] struct {
	branching  int
	clockStart uint64
	logger     *Logger
	metrics    MetricsCollector
}

// BranchingFactor sets the maximum number of keys per leaf and children per
// internal node. Must be at least btree.MinBranchingFactor.
// Default: btree.DefaultBranchingFactor.
func (b Builder[V]) BranchingFactor(n int) Builder[V] {
	b.branching = n
	return b
}

// ClockStart sets the initial logical timestamp. The first mutation is
// stamped ClockStart+1. Default: 0.
func (b Builder[V]) ClockStart(ts uint64) Builder[V] {
	b.clockStart = ts
	return b
}

// Logger configures structured logging for operations.
// Default: no logging.
func (b Builder[V]) Logger(l *Logger) Builder[V] {
	b.logger = l
	return b
}

// Metrics configures a metrics collector for monitoring operations.
// Default: no metrics collection.
func (b Builder[V]) Metrics(mc MetricsCollector) Builder[V] {
	b.metrics = mc
	return b
}

// Build creates an empty tree from the builder configuration.
func (b Builder[V]) Build() (*MVBTree[V], error) {
	tree, err := btree.New[V](b.branching, btree.NewClock(b.clockStart), btree.NewSnapshotTable())
	if err != nil {
		return nil, err
	}
	return b.wrap(tree), nil
}

// BuildFromState creates a tree from exported state, for example a decoded
// checkpoint. The builder's branching factor and clock start are ignored in
// favor of the state's own. Live snapshots in the state stay valid.
func (b Builder[V]) BuildFromState(state *btree.TreeState[V]) (*MVBTree[V], error) {
	tree, err := btree.NewFromState(state)
	if err != nil {
		return nil, err
	}
	return b.wrap(tree), nil
}

// BuildFromCheckpoint loads the newest checkpoint from the manager and
// creates a tree from it.
func (b Builder[V]) BuildFromCheckpoint(ctx context.Context, m *checkpoint.Manager) (*MVBTree[V], error) {
	state, name, err := checkpoint.FetchLatest[V](ctx, m)
	if err != nil {
		return nil, err
	}

	t, err := b.BuildFromState(state)
	if err != nil {
		return nil, err
	}

	t.logger.LogRestore(ctx, name, state.Clock, nil)
	return t, nil
}

func (b Builder[V]) wrap(tree *btree.Tree[V]) *MVBTree[V] {
	logger := b.logger
	if logger == nil {
		logger = NoopLogger()
	}
	metrics := b.metrics
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &MVBTree[V]{
		tree:    tree,
		logger:  logger,
		metrics: metrics,
	}
}
