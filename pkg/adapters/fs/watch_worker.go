package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/internal/debounce"
	"github.com/aretw0/jotter/pkg/core"
)

// WatchDelay is the quiet period used to coalesce bursts of writes to one file.
const WatchDelay = 50 * time.Millisecond

// WatchDir watches the top level of dir and emits one event per burst of
// changes to files whose base name matches pattern. The channel is closed
// when ctx is cancelled.
func WatchDir(ctx context.Context, dir, pattern string, logger *slog.Logger) (<-chan core.Event, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &dirWatcher{
		cancel:    cancel,
		pattern:   pattern,
		watcher:   watcher,
		debouncer: debounce.New(WatchDelay),
		out:       make(chan core.Event, 1),
		logger:    logger,
	}

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("watcher stopped", "dir", dir, "error", err)
	}))

	return w.out, nil
}

type dirWatcher struct {
	cancel    context.CancelFunc
	pattern   string
	watcher   *fsnotify.Watcher
	debouncer *debounce.Debouncer
	out       chan core.Event
	logger    *slog.Logger
}

func (w *dirWatcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", err)
			}
		}
		w.cancel()
		w.debouncer.Stop()
		_ = w.watcher.Close()
		close(w.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *dirWatcher) handle(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	if ok, _ := doublestar.Match(w.pattern, name); !ok {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write), event.Has(fsnotify.Rename), event.Has(fsnotify.Remove):
		eType = core.EventChange
	default:
		return
	}

	e := core.Event{
		Type:      eType,
		ID:        idFromName(name),
		Timestamp: time.Now().UnixMilli(),
	}
	w.logger.Debug("event received", "name", name, "type", eType)

	// The send must not outlive run: Stop waits for in-flight callbacks
	// before the channel is closed.
	w.debouncer.Trigger(name, func() {
		select {
		case w.out <- e:
		case <-ctx.Done():
		}
	})
}

// idFromName returns the note id encoded in a note file name, or 0.
func idFromName(name string) int64 {
	id, err := strconv.ParseInt(strings.TrimSuffix(name, noteExt), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
