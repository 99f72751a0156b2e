package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits used when the config leaves logging.max_size_mb or
// logging.max_files unset. They match the jot.toml defaults.
const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

// ErrNoLogFile is returned when file logging is requested without a path.
var ErrNoLogFile = errors.New("log file path must not be empty")

// openLogFile prepares the rotating writer behind logging.file. Rotated
// copies sit next to the live file (jot.log, jot-<time>.log, ...) and are
// stamped in local time so they line up with note timestamps shown by jot.
func openLogFile(opts Options) (*lumberjack.Logger, error) {
	if opts.File == "" {
		return nil, ErrNoLogFile
	}

	w := logFileFor(opts)
	if err := os.MkdirAll(filepath.Dir(w.Filename), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return w, nil
}

func logFileFor(opts Options) *lumberjack.Logger {
	size, files := opts.MaxSizeMB, opts.MaxFiles
	if size <= 0 {
		size = DefaultMaxSizeMB
	}
	if files <= 0 {
		files = DefaultMaxFiles
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    size,
		MaxBackups: files,
		LocalTime:  true,
	}
}
