package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/postbox/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("creates data directory if not exists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")

		_, err := New(dir)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a value", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Set(ctx, "postbox-state", []byte(`{"a":1}`)))
		got, err := s.Get(ctx, "postbox-state")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got))

		_, err = os.Stat(filepath.Join(s.Dir(), "postbox-state.json"))
		assert.NoError(t, err)
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Set(ctx, "k", []byte("one")))
		require.NoError(t, s.Set(ctx, "k", []byte("two")))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))

		entries, err := os.ReadDir(s.Dir())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "k.json", entries[0].Name())
	})

	t.Run("missing key", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("rejects keys that escape the directory", func(t *testing.T) {
		s := newTestStore(t)
		for _, key := range []string{"", "../x", "a/b", ".hidden"} {
			assert.ErrorIs(t, s.Set(ctx, key, nil), storage.ErrInvalidKey, key)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "k", nil), storage.ErrClosed)
}
