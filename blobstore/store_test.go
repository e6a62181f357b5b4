package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("PutGetRoundtrip", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "ckpt-1.mvb", strings.NewReader("hello")))

		rc, err := store.Get(ctx, "ckpt-1.mvb")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "ckpt-1.mvb", strings.NewReader("world")))

		rc, err := store.Get(ctx, "ckpt-1.mvb")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "world", string(data))
	})

	t.Run("ListSortedByPrefix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "ckpt-3.mvb", strings.NewReader("c")))
		require.NoError(t, store.Put(ctx, "ckpt-2.mvb", strings.NewReader("b")))
		require.NoError(t, store.Put(ctx, "other", strings.NewReader("x")))

		names, err := store.List(ctx, "ckpt-")
		require.NoError(t, err)
		assert.Equal(t, []string{"ckpt-1.mvb", "ckpt-2.mvb", "ckpt-3.mvb"}, names)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "ckpt-2.mvb"))
		require.NoError(t, store.Delete(ctx, "ckpt-2.mvb"))

		_, err := store.Get(ctx, "ckpt-2.mvb")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestLocalStoreNoTempResidue(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "blob", strings.NewReader("data")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"blob"}, names)
}
