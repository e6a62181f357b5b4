package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mvbtree/blobstore"
	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/resource"
)

// namePrefix and nameSuffix frame checkpoint blob names. The clock is
// zero-padded so lexicographic order matches checkpoint order.
const (
	namePrefix = "ckpt-"
	nameSuffix = ".mvb"
)

// ErrNoCheckpoints is returned when the store holds no checkpoints.
var ErrNoCheckpoints = errors.New("checkpoint: no checkpoints")

// Name returns the blob name for a checkpoint taken at the given clock.
func Name(clock uint64) string {
	return fmt.Sprintf("%s%020d%s", namePrefix, clock, nameSuffix)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSaveOptions sets the Save options applied to every published
// checkpoint.
func WithSaveOptions(opts ...SaveOption) ManagerOption {
	return func(m *Manager) { m.saveOpts = opts }
}

// WithController paces checkpoint uploads through the given resource
// controller.
func WithController(c *resource.Controller) ManagerOption {
	return func(m *Manager) { m.controller = c }
}

// Manager names, publishes and retains checkpoints on a blob store.
type Manager struct {
	store      blobstore.Store
	saveOpts   []SaveOption
	controller *resource.Controller
}

// NewManager creates a Manager on the given store.
func NewManager(store blobstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish saves the state as a new checkpoint blob named after its clock
// and returns the blob name.
func Publish[V any](ctx context.Context, m *Manager, state *btree.TreeState[V]) (string, error) {
	var buf bytes.Buffer
	if err := Save(&buf, state, m.saveOpts...); err != nil {
		return "", err
	}

	name := Name(state.Clock)
	r := resource.NewRateLimitedReader(ctx, &buf, m.controller)
	if err := m.store.Put(ctx, name, r); err != nil {
		return "", fmt.Errorf("checkpoint: publish %s: %w", name, err)
	}
	return name, nil
}

// Fetch loads the named checkpoint.
func Fetch[V any](ctx context.Context, m *Manager, name string) (*btree.TreeState[V], error) {
	rc, err := m.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: fetch %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	return Load[V](resource.NewRateLimitedReader(ctx, rc, m.controller))
}

// FetchLatest loads the newest checkpoint and returns it with its name.
func FetchLatest[V any](ctx context.Context, m *Manager) (*btree.TreeState[V], string, error) {
	name, err := m.Latest(ctx)
	if err != nil {
		return nil, "", err
	}
	state, err := Fetch[V](ctx, m, name)
	if err != nil {
		return nil, "", err
	}
	return state, name, nil
}

// List returns all checkpoint names, oldest first.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx, namePrefix)
}

// Latest returns the name of the newest checkpoint.
func (m *Manager) Latest(ctx context.Context) (string, error) {
	names, err := m.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoCheckpoints
	}
	return names[len(names)-1], nil
}

// Prune deletes all but the newest keep checkpoints. Deletes run in
// parallel, bounded by the background worker limit when a controller is
// configured.
func (m *Manager) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return fmt.Errorf("checkpoint: negative keep count %d", keep)
	}

	names, err := m.List(ctx)
	if err != nil {
		return err
	}
	if len(names) <= keep {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names[:len(names)-keep] {
		g.Go(func() error {
			if err := m.controller.AcquireWorker(ctx); err != nil {
				return err
			}
			defer m.controller.ReleaseWorker()

			return m.store.Delete(ctx, name)
		})
	}
	return g.Wait()
}
