package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
)

// setupRepo creates an uninitialized repository under a fresh temp dir.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data")
	cfg := fs.Config{
		Path: path,
		Name: "NotesAppDB",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), path
}

func openRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()
	repo, path := setupRepo(t, opts...)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, path
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Layout", func(t *testing.T) {
		_, path := openRepo(t)

		for _, p := range []string{
			filepath.Join(path, "notes"),
			filepath.Join(path, ".jotter", "meta.yaml"),
			filepath.Join(path, ".jotter", "index.yaml"),
		} {
			_, err := os.Stat(p)
			assert.NoError(t, err, p)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		repo, _ := openRepo(t)
		require.NoError(t, repo.Initialize(ctx))
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) { c.MustExist = true })

		err := repo.Initialize(ctx)
		require.ErrorIs(t, err, core.ErrStorageUnavailable)
	})

	t.Run("Failure Is Terminal", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0o644))

		first := repo.Initialize(ctx)
		require.ErrorIs(t, first, core.ErrStorageUnavailable)

		require.NoError(t, os.Remove(path))
		second := repo.Initialize(ctx)
		require.Equal(t, first, second, "a failed handle must not retry")

		_, err := repo.List(ctx)
		require.ErrorIs(t, err, core.ErrNotReady)
	})

	t.Run("Rejects Newer Schema", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.MkdirAll(filepath.Join(path, ".jotter"), 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(path, ".jotter", "meta.yaml"),
			[]byte("name: NotesAppDB\nversion: 99\nnext_id: 1\n"),
			0o644,
		))

		err := repo.Initialize(ctx)
		require.ErrorIs(t, err, core.ErrStorageUnavailable)
		require.ErrorIs(t, err, fs.ErrSchemaTooNew)
	})
}

func TestNotReady(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "early")
	require.ErrorIs(t, err, core.ErrNotReady)

	_, err = repo.List(ctx)
	require.ErrorIs(t, err, core.ErrNotReady)

	_, err = repo.Watch(ctx)
	require.ErrorIs(t, err, core.ErrNotReady)
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Collection", func(t *testing.T) {
		repo, _ := openRepo(t)

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		require.NotNil(t, notes)
		require.Empty(t, notes)
	})

	t.Run("Stamps With Clock", func(t *testing.T) {
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		repo, path := openRepo(t, func(c *fs.Config) {
			c.Now = func() time.Time { return at }
		})

		id, err := repo.Create(ctx, "Buy milk")
		require.NoError(t, err)
		require.Equal(t, int64(1), id)

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []core.Note{{ID: 1, Content: "Buy milk", Timestamp: at.UnixMilli()}}, notes)

		data, err := os.ReadFile(filepath.Join(path, "notes", "1.md"))
		require.NoError(t, err)
		require.Contains(t, string(data), "Buy milk")
	})

	t.Run("Rejects Empty Content", func(t *testing.T) {
		repo, _ := openRepo(t)

		_, err := repo.Create(ctx, "")
		require.ErrorIs(t, err, core.ErrWriteFailed)
	})

	t.Run("Ascending Id Order", func(t *testing.T) {
		repo, _ := openRepo(t)

		for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
			_, err := repo.Create(ctx, c)
			require.NoError(t, err)
		}

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, notes, 11)
		for i, n := range notes {
			require.Equal(t, int64(i+1), n.ID)
		}
	})
}

// Create(c) followed by List() yields exactly one new record holding c,
// with an id above every id seen before.
func TestCreateRoundTrip(t *testing.T) {
	repo, _ := openRepo(t)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		content := rapid.StringN(1, 64, -1).Draw(t, "content")

		before, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list before: %v", err)
		}
		id, err := repo.Create(ctx, content)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		after, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list after: %v", err)
		}

		if len(after) != len(before)+1 {
			t.Fatalf("expected %d notes, got %d", len(before)+1, len(after))
		}
		for _, n := range before {
			if n.ID >= id {
				t.Fatalf("id %d not greater than existing id %d", id, n.ID)
			}
		}
		last := after[len(after)-1]
		if last.ID != id || last.Content != content {
			t.Fatalf("got %+v, want id %d content %q", last, id, content)
		}
	})
}

func TestReopen(t *testing.T) {
	ctx := context.Background()

	t.Run("Ids Are Never Reused", func(t *testing.T) {
		repo, path := openRepo(t)
		_, err := repo.Create(ctx, "one")
		require.NoError(t, err)
		id2, err := repo.Create(ctx, "two")
		require.NoError(t, err)

		// Deleting the newest note must not free its id.
		require.NoError(t, os.Remove(filepath.Join(path, "notes", "2.md")))

		reopened := fs.NewRepository(fs.Config{Path: path, Name: "NotesAppDB"})
		require.NoError(t, reopened.Initialize(ctx))

		id3, err := reopened.Create(ctx, "three")
		require.NoError(t, err)
		require.Greater(t, id3, id2)
	})

	t.Run("Skips Ids Taken On Disk", func(t *testing.T) {
		repo, path := openRepo(t)
		_, err := repo.Create(ctx, "one")
		require.NoError(t, err)

		foreign := []byte("---\nid: 7\ntimestamp: 1\n---\nfrom elsewhere")
		require.NoError(t, os.WriteFile(filepath.Join(path, "notes", "7.md"), foreign, 0o644))

		reopened := fs.NewRepository(fs.Config{Path: path})
		require.NoError(t, reopened.Initialize(ctx))

		id, err := reopened.Create(ctx, "after")
		require.NoError(t, err)
		require.Equal(t, int64(8), id)

		notes, err := reopened.List(ctx)
		require.NoError(t, err)
		require.Len(t, notes, 3)
	})
}

func TestCreateRollsBackOnMetaFailure(t *testing.T) {
	repo, path := openRepo(t)
	ctx := context.Background()

	// A directory in place of meta.yaml makes the rename fail even for root.
	metaPath := filepath.Join(path, ".jotter", "meta.yaml")
	require.NoError(t, os.Remove(metaPath))
	require.NoError(t, os.Mkdir(metaPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(metaPath, "keep"), nil, 0o644))

	_, err := repo.Create(ctx, "doomed")
	require.ErrorIs(t, err, core.ErrWriteFailed)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, notes, "a failed create must leave no record")
}

func TestIndexes(t *testing.T) {
	ctx := context.Background()
	at := time.UnixMilli(1_700_000_000_000)
	repo, path := openRepo(t, func(c *fs.Config) {
		c.Now = func() time.Time { return at }
	})

	for _, c := range []string{"dup", "other", "dup"} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	require.Equal(t, []int64{1, 3}, repo.FindByContent("dup"))
	require.Equal(t, []int64{1, 2, 3}, repo.FindByTimestamp(at.UnixMilli()))
	require.Empty(t, repo.FindByContent("missing"))

	t.Run("Rebuilt When Missing", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(path, ".jotter", "index.yaml")))

		reopened := fs.NewRepository(fs.Config{Path: path})
		require.NoError(t, reopened.Initialize(ctx))
		require.Equal(t, []int64{2}, reopened.FindByContent("other"))
	})
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t)
	require.Equal(t, "fs", repo.ComponentType())

	state := repo.State().(fs.RepositoryState)
	require.Equal(t, "uninitialized", state.Status)

	require.NoError(t, repo.Initialize(context.Background()))
	_, err := repo.Create(context.Background(), "x")
	require.NoError(t, err)

	state = repo.State().(fs.RepositoryState)
	require.Equal(t, path, state.Path)
	require.Equal(t, "ready", state.Status)
	require.Equal(t, "NotesAppDB", state.Name)
	require.Equal(t, int64(2), state.NextID)
	require.Equal(t, 1, state.IndexedNotes)
	require.Empty(t, state.Error)
}

func TestWatch(t *testing.T) {
	repo, path := openRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	id, err := repo.Create(context.Background(), "watched")
	require.NoError(t, err)

	select {
	case e := <-events:
		require.Equal(t, id, e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for created note")
	}

	// Writes outside the pattern are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(path, "notes", "readme.txt"), []byte("x"), 0o644))
	select {
	case e, ok := <-events:
		if ok {
			t.Fatalf("unexpected event for non-note file: %v", e)
		}
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}
