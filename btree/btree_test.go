package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T, branching int) *Tree[int64] {
	t.Helper()
	tree, err := New[int64](branching, NewClock(0), NewSnapshotTable())
	require.NoError(t, err)
	return tree
}

func TestNew(t *testing.T) {
	t.Run("RejectsSmallBranchingFactor", func(t *testing.T) {
		_, err := New[int64](2, nil, nil)
		require.ErrorIs(t, err, ErrInvalidBranchingFactor)
	})

	t.Run("DefaultsClockAndTable", func(t *testing.T) {
		tree, err := New[int64](DefaultBranchingFactor, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, tree.Clock())
		assert.NotNil(t, tree.Snapshots())
	})
}

func TestInsertAndFind(t *testing.T) {
	tree := newTestTree(t, 4)

	_, existed := tree.Insert(10, 100, false)
	assert.False(t, existed)

	v, ok := tree.Find(10)
	require.True(t, ok)
	assert.Equal(t, int64(100), v)

	_, ok = tree.Find(40)
	assert.False(t, ok)
}

func TestInsertOverwrite(t *testing.T) {
	tree := newTestTree(t, 4)

	tree.Insert(1, 10, false)
	prev, existed := tree.Insert(1, 20, false)
	require.True(t, existed)
	assert.Equal(t, int64(10), prev)

	v, ok := tree.Find(1)
	require.True(t, ok)
	assert.Equal(t, int64(20), v)
}

func TestInsertRevivesTombstone(t *testing.T) {
	tree := newTestTree(t, 4)

	tree.Insert(1, 10, false)
	require.True(t, tree.Erase(1, false))

	// The slot is tombstoned, so the insert is a fresh one.
	_, existed := tree.Insert(1, 30, false)
	assert.False(t, existed)

	v, ok := tree.Find(1)
	require.True(t, ok)
	assert.Equal(t, int64(30), v)
}

func TestErase(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, false)
		assert.True(t, tree.Erase(1, false))
		_, ok := tree.Find(1)
		assert.False(t, ok)
	})

	t.Run("AbsentIsNoOp", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, false)
		before := tree.Stats().Versions

		assert.False(t, tree.Erase(99, false))
		assert.Equal(t, before, tree.Stats().Versions, "a miss must not create a version")
	})

	t.Run("EmptyTree", func(t *testing.T) {
		tree := newTestTree(t, 4)
		assert.False(t, tree.Erase(1, false))
	})

	t.Run("TombstonedTwice", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, false)
		require.True(t, tree.Erase(1, false))
		assert.False(t, tree.Erase(1, false))
	})
}

func TestSplitKeepsEverythingFindable(t *testing.T) {
	tree := newTestTree(t, 4)

	const n = 200
	for i := int64(0); i < n; i++ {
		tree.Insert(i*2, i*20, false)
	}

	for i := int64(0); i < n; i++ {
		v, ok := tree.Find(i * 2)
		require.True(t, ok, "key %d", i*2)
		assert.Equal(t, i*20, v)
	}
	_, ok := tree.Find(1)
	assert.False(t, ok)

	stats := tree.Stats()
	assert.Greater(t, stats.Height, 1, "200 keys at branching 4 must grow the tree")
	assert.Equal(t, int(n), stats.Keys)
}

func TestSplitPreservesSnapshotCut(t *testing.T) {
	tree := newTestTree(t, 4)

	for i := int64(1); i <= 3; i++ {
		tree.Insert(i, i*10, false)
	}
	snap := tree.TakeSnapshot()
	heightBefore := tree.Stats().Height

	// Overflow the leaf repeatedly so splits restructure the current state.
	for i := int64(4); i <= 50; i++ {
		tree.Insert(i, i*10, false)
	}
	require.Greater(t, tree.Stats().Height, heightBefore)

	got, err := tree.RangeQueryAt(0, 100, snap)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, int64(i+1), e.Key)
		assert.Equal(t, int64(i+1)*10, e.Value)
	}

	// Point lookups against the snapshot still land on the old cut.
	for i := int64(1); i <= 3; i++ {
		v, ok, err := tree.FindAt(i, snap)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i*10, v)
	}
	_, ok, err := tree.FindAt(10, snap)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoricalVisibility(t *testing.T) {
	// insert(k, v); s = snapshot; erase(k): the snapshot still finds v,
	// the current state does not.
	tree := newTestTree(t, 4)

	tree.Insert(10, 100, false)
	snap := tree.TakeSnapshot()
	require.True(t, tree.Erase(10, false))

	v, ok, err := tree.FindAt(10, snap)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), v)

	_, ok = tree.Find(10)
	assert.False(t, ok)
}

func TestSnapshotBeforeFirstInsert(t *testing.T) {
	tree := newTestTree(t, 4)

	snap := tree.TakeSnapshot()
	tree.Insert(10, 100, false)

	_, ok, err := tree.FindAt(10, snap)
	require.NoError(t, err)
	assert.False(t, ok, "the tree was empty when the snapshot was taken")

	v, ok := tree.Find(10)
	require.True(t, ok)
	assert.Equal(t, int64(100), v)
}

func TestUnknownSnapshot(t *testing.T) {
	tree := newTestTree(t, 4)
	tree.Insert(1, 1, false)

	_, _, err := tree.FindAt(1, SnapshotID(42))
	require.ErrorIs(t, err, ErrUnknownSnapshot)

	_, err = tree.RangeQueryAt(0, 10, SnapshotID(42))
	require.ErrorIs(t, err, ErrUnknownSnapshot)

	_, err = tree.KeysAt(SnapshotID(42))
	require.ErrorIs(t, err, ErrUnknownSnapshot)
}

func TestInPlace(t *testing.T) {
	t.Run("NoSnapshotMutatesHead", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, true)
		for i := 0; i < 10; i++ {
			tree.Insert(1, int64(i), true)
		}
		stats := tree.Stats()
		assert.Equal(t, 1, stats.MaxChainLength, "in-place updates must not grow the chain")
		assert.Equal(t, 1, stats.Versions)
	})

	t.Run("LiveSnapshotForcesCopyOnWrite", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, true)
		snap := tree.TakeSnapshot()

		// The caller asks for in-place, but the snapshot pins the head.
		tree.Insert(1, 20, true)

		v, ok, err := tree.FindAt(1, snap)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(10), v, "snapshot isolation survives a disabled-versioning caller")

		cur, ok := tree.Find(1)
		require.True(t, ok)
		assert.Equal(t, int64(20), cur)
		assert.Equal(t, 2, tree.Stats().MaxChainLength)
	})

	t.Run("ReleasedSnapshotUnblocksInPlace", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, true)
		snap := tree.TakeSnapshot()
		require.NoError(t, tree.ReleaseSnapshot(snap))

		tree.Insert(1, 20, true)
		assert.Equal(t, 1, tree.Stats().MaxChainLength)
	})

	t.Run("EraseInPlaceRemovesPhysically", func(t *testing.T) {
		tree := newTestTree(t, 4)
		tree.Insert(1, 10, true)
		require.True(t, tree.Erase(1, true))

		stats := tree.Stats()
		assert.Equal(t, 1, stats.Versions)
		assert.Equal(t, 0, stats.Keys)
	})
}

func TestClockMonotonicity(t *testing.T) {
	tree := newTestTree(t, 4)

	last := tree.Clock().Now()
	step := func() {
		now := tree.Clock().Now()
		require.Greater(t, now, last)
		last = now
	}

	tree.Insert(1, 1, false)
	step()
	tree.TakeSnapshot()
	step()
	tree.Erase(1, false)
	step()
	tree.Insert(2, 2, true)
	step()

	// No two versions in one chain share a timestamp.
	tree.WalkVersions(func(info VersionInfo) bool {
		if !info.IsHead {
			assert.Less(t, info.Timestamp, info.SuccessorTimestamp)
		}
		return true
	})
}

func TestScenarioA(t *testing.T) {
	tree := newTestTree(t, 4)

	tree.Insert(10, 100, false)
	tree.Insert(20, 200, false)
	tree.Insert(30, 300, false)
	s1 := tree.TakeSnapshot()
	tree.Insert(40, 400, false)
	tree.Insert(50, 500, false)

	current := tree.RangeQuery(0, 100)
	require.Equal(t, []Entry[int64]{
		{10, 100}, {20, 200}, {30, 300}, {40, 400}, {50, 500},
	}, current)

	old, err := tree.RangeQueryAt(0, 100, s1)
	require.NoError(t, err)
	require.Equal(t, []Entry[int64]{{10, 100}, {20, 200}, {30, 300}}, old)
}

func TestSnapshotIsolation(t *testing.T) {
	// Immediately after taking a snapshot, the snapshot cut and the current
	// cut are identical.
	tree := newTestTree(t, 4)
	for i := int64(0); i < 20; i++ {
		tree.Insert(i, i, false)
	}
	snap := tree.TakeSnapshot()

	current := tree.RangeQuery(0, 100)
	old, err := tree.RangeQueryAt(0, 100, snap)
	require.NoError(t, err)
	assert.Equal(t, current, old)
}

func TestStats(t *testing.T) {
	tree := newTestTree(t, 4)
	empty := tree.Stats()
	assert.Zero(t, empty.Nodes)
	assert.Zero(t, empty.Height)

	tree.Insert(1, 1, false)
	tree.Insert(2, 2, false)
	tree.TakeSnapshot()
	tree.Insert(2, 3, false)

	stats := tree.Stats()
	assert.Equal(t, 1, stats.Nodes)
	assert.Equal(t, 2, stats.Keys)
	assert.Equal(t, 1, stats.Height)
	assert.Equal(t, 3, stats.Versions)
	assert.Equal(t, 3, stats.MaxChainLength)
	assert.Equal(t, 1, stats.Snapshots)
	assert.Equal(t, uint64(4), stats.CurrentTimestamp)
}

func TestKeys(t *testing.T) {
	tree := newTestTree(t, 4)
	for _, k := range []int64{5, 1, 9, 3, 7} {
		tree.Insert(k, k, false)
	}
	snap := tree.TakeSnapshot()
	tree.Erase(5, false)

	assert.Equal(t, []int64{1, 3, 7, 9}, tree.Keys())

	old, err := tree.KeysAt(snap)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 5, 7, 9}, old)
}

func TestAppendInvariantPanics(t *testing.T) {
	tree := newTestTree(t, 4)
	tree.Insert(1, 1, false)
	n := tree.roots.current()

	assert.PanicsWithError(t,
		"btree: invariant violated in append: non-increasing timestamp 1 onto head 1",
		func() {
			tree.appendVersion(n, version[int64]{ts: 1})
		})
}

func TestResolveMustPanicsBeforeCreation(t *testing.T) {
	tree := newTestTree(t, 4)
	tree.Insert(1, 1, false)
	n := tree.roots.current()

	assert.Panics(t, func() {
		tree.resolveMust(n, 0)
	})
}
