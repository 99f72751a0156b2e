// Package sqlite stores notes in an embedded SQLite database with a
// versioned schema created on first use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
	_ "modernc.org/sqlite"
)

// DefaultName is the database name used when Config.Name is empty.
const DefaultName = "NotesAppDB"

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

// Status is the connection lifecycle of a Store.
type Status int

const (
	StatusUninitialized Status = iota
	StatusOpening
	StatusReady
	StatusFailed
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusOpening:
		return "opening"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config holds the configuration for the SQLite store.
type Config struct {
	Dir       string
	Name      string // Database name; the file is {Dir}/{Name}.db
	MustExist bool
	Logger    *slog.Logger
	Now       func() time.Time
}

// Store implements core.Repository on top of a single SQLite file.
type Store struct {
	mu      sync.Mutex
	config  Config
	path    string
	db      *sql.DB
	status  Status
	openErr error
}

// NewStore creates a store. No I/O happens until Initialize.
func NewStore(config Config) *Store {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		config: config,
		path:   filepath.Join(config.Dir, config.Name+".db"),
	}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Status reports where the store is in its lifecycle.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Initialize opens the database and creates the notes collection if needed.
// Calling it again after success is a no-op; after a failure it returns the
// same error without retrying.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusReady:
		return nil
	case StatusFailed:
		return s.openErr
	case StatusClosed:
		return fmt.Errorf("%w: store is closed", core.ErrStorageUnavailable)
	}

	s.status = StatusOpening
	db, err := s.open(ctx)
	if err != nil {
		s.status = StatusFailed
		s.openErr = fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err)
		s.config.Logger.Error("open database failed", "path", s.path, "error", err)
		return s.openErr
	}

	s.db = db
	s.status = StatusReady
	s.config.Logger.Debug("database ready", "path", s.path, "version", CurrentSchemaVersion())
	return nil
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if s.config.MustExist {
		info, err := os.Stat(s.config.Dir)
		if err != nil {
			return nil, fmt.Errorf("data directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("data path is not a directory: %s", s.config.Dir)
		}
	} else if err := os.MkdirAll(s.config.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer, one reader, never concurrently.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range []string{pragmaJournalModeWAL, pragmaBusyTimeout} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite (%s): %w", stmt, err)
		}
	}

	if err := RunMigrations(db, DefaultMigrations()); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO db_meta(key, value) VALUES(?, ?)`, nameMetaKey, s.config.Name); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record database name: %w", err)
	}

	return db, nil
}

func (s *Store) ready() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusReady {
		return nil, fmt.Errorf("%w (status: %s)", core.ErrNotReady, s.status)
	}
	return s.db, nil
}

// Create inserts a note stamped with the store's clock in a single transaction.
func (s *Store) Create(ctx context.Context, content string) (int64, error) {
	db, err := s.ready()
	if err != nil {
		return 0, err
	}
	if content == "" {
		return 0, fmt.Errorf("%w: empty content", core.ErrWriteFailed)
	}

	timestamp := s.config.Now().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", core.ErrWriteFailed, err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO notes(content, timestamp) VALUES (?, ?)`, content, timestamp)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: insert: %w", core.ErrWriteFailed, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: last insert id: %w", core.ErrWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", core.ErrWriteFailed, err)
	}

	return id, nil
}

// List scans the whole collection in key order.
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	db, err := s.ready()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, content, timestamp FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", core.ErrReadFailed, err)
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		var n core.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", core.ErrReadFailed, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", core.ErrReadFailed, err)
	}

	return notes, nil
}

// Close releases the connection. The store cannot be reopened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		s.status = StatusClosed
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.status = StatusClosed
	return err
}

// DB exposes the raw handle for maintenance tooling and tests.
func (s *Store) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

var _ core.Repository = (*Store)(nil)
var _ core.Closer = (*Store)(nil)
