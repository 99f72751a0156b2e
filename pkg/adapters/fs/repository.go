// Package fs stores notes as Markdown files with YAML frontmatter in a
// plain directory, one file per note.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	notesDirName  = "notes"
	noteExt       = ".md"
	noteGlob      = "*" + noteExt
	metaFileName  = "meta.yaml"
	indexFileName = "index.yaml"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	Name      string // Database name recorded in meta.yaml
	MustExist bool
	SystemDir string // e.g. ".jotter"
	Logger    *slog.Logger
	Now       func() time.Time
}

type status string

const (
	statusUninitialized status = "uninitialized"
	statusOpening       status = "opening"
	statusReady         status = "ready"
	statusFailed        status = "failed"
)

// Repository implements core.Repository on a directory of Markdown files.
//
// Layout:
//
//	{Path}/notes/{id}.md          one note per file
//	{Path}/{SystemDir}/meta.yaml  name, schema version, id sequence
//	{Path}/{SystemDir}/index.yaml content and timestamp indexes
type Repository struct {
	Path string

	mu         sync.Mutex
	config     Config
	serializer MarkdownSerializer
	meta       *meta
	index      *index
	status     status
	openErr    error
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".jotter"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		index:  newIndex(filepath.Join(config.Path, config.SystemDir, indexFileName)),
		status: statusUninitialized,
	}
}

func (r *Repository) notesDir() string  { return filepath.Join(r.Path, notesDirName) }
func (r *Repository) systemDir() string { return filepath.Join(r.Path, r.config.SystemDir) }
func (r *Repository) metaPath() string  { return filepath.Join(r.systemDir(), metaFileName) }

func (r *Repository) notePath(id int64) string {
	return filepath.Join(r.notesDir(), fmt.Sprintf("%d%s", id, noteExt))
}

// Initialize prepares the directory layout and loads the id sequence.
//
// Workflow:
//  1. Check or create the data, notes and system directories.
//  2. Load meta.yaml, creating it on first use; refuse newer schema versions.
//  3. Move the id sequence past any note file already on disk.
//  4. Load the secondary indexes or rebuild them from the notes.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case statusReady:
		return nil
	case statusFailed:
		return r.openErr
	}

	r.status = statusOpening
	if err := r.open(ctx); err != nil {
		r.status = statusFailed
		r.openErr = fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err)
		r.config.Logger.Error("open notes directory failed", "path", r.Path, "error", err)
		return r.openErr
	}

	r.status = statusReady
	r.config.Logger.Debug("notes directory ready", "path", r.Path, "next_id", r.meta.NextID)
	return nil
}

func (r *Repository) open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
	}
	for _, dir := range []string{r.Path, r.notesDir(), r.systemDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	m, found, err := loadMeta(r.metaPath())
	if err != nil {
		return err
	}
	if found && m.Version > SchemaVersion {
		return fmt.Errorf("%w: dir=%d code=%d", ErrSchemaTooNew, m.Version, SchemaVersion)
	}
	if !found {
		m = &meta{Name: r.config.Name, Version: SchemaVersion, NextID: 1}
	}
	if found && r.config.Name != "" && m.Name != r.config.Name {
		r.config.Logger.Warn("database name mismatch", "expected", r.config.Name, "found", m.Name)
	}

	notes, err := r.scan()
	if err != nil {
		return err
	}
	if len(notes) > 0 {
		if last := notes[len(notes)-1].ID; last >= m.NextID {
			m.NextID = last + 1
			found = false
		}
	}

	if !found {
		if err := m.save(r.metaPath()); err != nil {
			return err
		}
	} else if err := probeWritable(r.notesDir()); err != nil {
		return fmt.Errorf("notes directory not writable: %w", err)
	}
	r.meta = m

	ok, err := r.index.load()
	if err != nil {
		return err
	}
	if !ok || r.index.size() != len(notes) {
		r.index.rebuild(notes)
		if err := r.index.save(); err != nil {
			return fmt.Errorf("save index: %w", err)
		}
	}

	return nil
}

// Create writes the note file and advances the id sequence as one unit.
func (r *Repository) Create(ctx context.Context, content string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusReady {
		return 0, fmt.Errorf("%w (status: %s)", core.ErrNotReady, r.status)
	}
	if content == "" {
		return 0, fmt.Errorf("%w: empty content", core.ErrWriteFailed)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrWriteFailed, err)
	}

	tx := r.begin(content)
	if err := tx.stage(); err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrWriteFailed, err)
	}
	if err := tx.commit(); err != nil {
		tx.rollback()
		return 0, fmt.Errorf("%w: %w", core.ErrWriteFailed, err)
	}

	return tx.note.ID, nil
}

// List reads every note file and returns them in ascending id order.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusReady {
		return nil, fmt.Errorf("%w (status: %s)", core.ErrNotReady, r.status)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrReadFailed, err)
	}

	notes, err := r.scan()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrReadFailed, err)
	}
	return notes, nil
}

func (r *Repository) scan() ([]core.Note, error) {
	names, err := doublestar.Glob(os.DirFS(r.notesDir()), noteGlob)
	if err != nil {
		return nil, fmt.Errorf("glob notes: %w", err)
	}

	notes := make([]core.Note, 0, len(names))
	for _, name := range names {
		// Only {id}.md files are notes; temp files and strays are left alone.
		if strings.HasPrefix(name, TempFilePrefix) || idFromName(name) <= 0 {
			continue
		}
		n, err := r.readNote(filepath.Join(r.notesDir(), name))
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	slices.SortFunc(notes, func(a, b core.Note) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return notes, nil
}

func (r *Repository) readNote(path string) (core.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Note{}, err
	}
	defer f.Close()

	n, err := r.serializer.Parse(f)
	if err != nil {
		return core.Note{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// FindByContent returns the ids of notes whose content equals content.
func (r *Repository) FindByContent(content string) []int64 {
	return r.index.byContent(content)
}

// FindByTimestamp returns the ids of notes stamped at ts (Unix milliseconds).
func (r *Repository) FindByTimestamp(ts int64) []int64 {
	return r.index.byTimestamp(ts)
}

// Watch reports changes to note files made by any process.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	r.mu.Lock()
	ready := r.status == statusReady
	r.mu.Unlock()
	if !ready {
		return nil, core.ErrNotReady
	}
	return WatchDir(ctx, r.notesDir(), noteGlob, r.config.Logger)
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
