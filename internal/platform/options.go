package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

const (
	AdapterSQLite = "sqlite"
	AdapterFS     = "fs"

	// DefaultSystemDir marks a data directory and holds its side files.
	DefaultSystemDir = ".jotter"
)

// options holds the internal configuration for the notes service.
type options struct {
	repository core.Repository
	drafts     core.DraftCache
	logger     *slog.Logger
	adapter    string
	name       string
	systemDir  string
	mustExist  bool
	now        func() time.Time
}

// Option defines a functional option for configuring the service.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter:   AdapterSQLite,
		systemDir: DefaultSystemDir,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithAdapter selects the storage adapter by name ("sqlite" or "fs").
// Defaults to "sqlite".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger for the service and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the database name. Empty means the adapter default.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRepository injects a custom storage adapter (e.g. a mock).
// When set, the adapter selection is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithDraftCache wires the draft store cleared after each successful save.
func WithDraftCache(drafts core.DraftCache) Option {
	return func(o *options) {
		o.drafts = drafts
	}
}

// WithClock overrides the clock used to stamp new notes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithMustExist refuses to create the data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithSystemDir renames the hidden side directory. Defaults to ".jotter".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}
