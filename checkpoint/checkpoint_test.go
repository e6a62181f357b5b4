package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mvbtree/blobstore"
	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/codec"
	"github.com/hupe1980/mvbtree/resource"
)

func buildState(t *testing.T) *btree.TreeState[string] {
	t.Helper()

	tree, err := btree.New[string](4, btree.NewClock(0), btree.NewSnapshotTable())
	require.NoError(t, err)

	for i := int64(0); i < 100; i++ {
		tree.Insert(i, "value", false)
	}
	tree.TakeSnapshot()
	tree.Erase(7, false)

	return tree.ExportState()
}

func restore(t *testing.T, state *btree.TreeState[string]) *btree.Tree[string] {
	t.Helper()
	tree, err := btree.NewFromState(state)
	require.NoError(t, err)
	return tree
}

func TestSaveLoadRoundtrip(t *testing.T) {
	schemes := []Compression{CompressionNone, CompressionZstd, CompressionLZ4}

	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			state := buildState(t)

			var buf bytes.Buffer
			require.NoError(t, Save(&buf, state, WithCompression(scheme)))

			loaded, err := Load[string](&buf)
			require.NoError(t, err)

			tree := restore(t, loaded)
			assert.Equal(t, restore(t, state).Stats(), tree.Stats())

			_, found := tree.Find(7)
			assert.False(t, found)
			v, found := tree.Find(8)
			assert.True(t, found)
			assert.Equal(t, "value", v)
		})
	}
}

func TestSaveLoadWithJSONCodec(t *testing.T) {
	state := buildState(t)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, state, WithCodec(codec.JSON{})))

	// The header records the codec, so Load needs no hint.
	loaded, err := Load[string](&buf)
	require.NoError(t, err)
	assert.Equal(t, state.Clock, loaded.Clock)
}

func TestLoadRejectsCorruption(t *testing.T) {
	state := buildState(t)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, state))
	good := buf.Bytes()

	t.Run("BadMagic", func(t *testing.T) {
		data := bytes.Clone(good)
		data[0] ^= 0xFF
		_, err := Load[string](bytes.NewReader(data))
		assert.True(t, errors.Is(err, ErrInvalidMagic))
	})

	t.Run("BadVersion", func(t *testing.T) {
		data := bytes.Clone(good)
		data[5] = 99
		_, err := Load[string](bytes.NewReader(data))
		assert.True(t, errors.Is(err, ErrUnsupportedVersion))
	})

	t.Run("BadCompression", func(t *testing.T) {
		data := bytes.Clone(good)
		data[6] = 200
		_, err := Load[string](bytes.NewReader(data))
		assert.True(t, errors.Is(err, ErrUnknownCompression))
	})

	t.Run("FlippedPayloadByte", func(t *testing.T) {
		data := bytes.Clone(good)
		data[len(data)/2] ^= 0xFF
		_, err := Load[string](bytes.NewReader(data))
		assert.True(t, errors.Is(err, ErrChecksumMismatch))
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Load[string](bytes.NewReader(good[:len(good)-8]))
		require.Error(t, err)
	})
}

func TestManagerPublishFetch(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore())

	state := buildState(t)
	name, err := Publish(ctx, m, state)
	require.NoError(t, err)
	assert.Equal(t, Name(state.Clock), name)

	loaded, err := Fetch[string](ctx, m, name)
	require.NoError(t, err)
	assert.Equal(t, state.Clock, loaded.Clock)
}

func TestManagerFetchLatest(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore())

	_, _, err := FetchLatest[string](ctx, m)
	assert.True(t, errors.Is(err, ErrNoCheckpoints))

	tree, err := btree.New[string](4, btree.NewClock(0), btree.NewSnapshotTable())
	require.NoError(t, err)

	tree.Insert(1, "a", false)
	_, err = Publish(ctx, m, tree.ExportState())
	require.NoError(t, err)

	tree.Insert(2, "b", false)
	second, err := Publish(ctx, m, tree.ExportState())
	require.NoError(t, err)

	state, name, err := FetchLatest[string](ctx, m)
	require.NoError(t, err)
	assert.Equal(t, second, name)

	restored := restore(t, state)
	_, found := restored.Find(2)
	assert.True(t, found)
}

func TestManagerPrune(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store, WithController(resource.NewController(resource.Config{
		MaxBackgroundWorkers: 2,
	})))

	tree, err := btree.New[string](4, btree.NewClock(0), btree.NewSnapshotTable())
	require.NoError(t, err)

	var names []string
	for i := int64(0); i < 5; i++ {
		tree.Insert(i, "v", false)
		name, err := Publish(ctx, m, tree.ExportState())
		require.NoError(t, err)
		names = append(names, name)
	}

	require.NoError(t, m.Prune(ctx, 2))

	remaining, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, names[3:], remaining)

	// Pruning below the current count is a no-op.
	require.NoError(t, m.Prune(ctx, 10))
	remaining, err = m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
