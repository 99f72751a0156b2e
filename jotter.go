package jotter

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Note is a public alias for the domain entity.
type Note = core.Note

// Directive is a public alias for the list ordering.
type Directive = core.Directive

// Service is a public alias for the session orchestrator.
type Service = core.Service

const (
	NewestToOldest = core.NewestToOldest
	OldestToNewest = core.OldestToNewest

	AdapterSQLite    = platform.AdapterSQLite
	AdapterFS        = platform.AdapterFS
	DefaultSystemDir = platform.DefaultSystemDir
)

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("sqlite" or "fs").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithName sets the database name (default "NotesAppDB").
func WithName(name string) Option {
	return platform.WithName(name)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithDraftCache wires the draft store cleared after each save.
func WithDraftCache(drafts core.DraftCache) Option {
	return platform.WithDraftCache(drafts)
}

// WithClock overrides the clock used to stamp notes.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithMustExist refuses to create the data directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSystemDir renames the hidden side directory (default ".jotter").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// --- Factory ---

// New opens the notes database under dir and returns a Service.
func New(dir string, opts ...Option) (*core.Service, error) {
	return platform.New(dir, opts...)
}

// Init opens the notes database under dir and returns the repository.
func Init(dir string, opts ...Option) (core.Repository, error) {
	return platform.Init(dir, opts...)
}

// FindRoot looks upwards from startDir for a directory holding ".jotter".
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
