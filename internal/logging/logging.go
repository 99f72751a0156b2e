// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level and destination of the logger.
// An empty File logs to Stderr; Verbose forces debug.
type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	Verbose   bool
	Stderr    io.Writer
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a text logger wrapped in a RedactingHandler. The closer
// releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var (
		w      io.Writer = opts.Stderr
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stderr
	}
	if opts.File != "" {
		rotating, err := openLogFile(opts)
		if err != nil {
			return nil, nil, err
		}
		w, closer = rotating, rotating
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(handler)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
