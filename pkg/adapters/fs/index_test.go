package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/core"
)

func TestIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")

	ix := newIndex(path)
	ix.rebuild([]core.Note{
		{ID: 1, Content: "a", Timestamp: 10},
		{ID: 2, Content: "b", Timestamp: 10},
	})
	ix.add(core.Note{ID: 3, Content: "a", Timestamp: 20})
	require.NoError(t, ix.save())

	loaded := newIndex(path)
	ok, err := loaded.load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, loaded.size())
	require.Equal(t, []int64{1, 3}, loaded.byContent("a"))
	require.Equal(t, []int64{1, 2}, loaded.byTimestamp(10))
}

func TestIndex_LoadNeedsRebuild(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		ok, err := newIndex(filepath.Join(dir, "absent.yaml")).load()
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("Corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.yaml")
		require.NoError(t, os.WriteFile(path, []byte("content: [unterminated"), 0o644))

		ix := newIndex(path)
		ok, err := ix.load()
		require.NoError(t, err)
		require.False(t, ok)
		require.Zero(t, ix.size())
	})

	t.Run("Other Version", func(t *testing.T) {
		path := filepath.Join(dir, "v9.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 9\n"), 0o644))

		ok, err := newIndex(path).load()
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestIndex_SaveSkipsClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	ix := newIndex(path)

	require.NoError(t, ix.save())
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
