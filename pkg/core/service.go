package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Service sequences a save into a durable write followed by a fresh read
// and a full re-render of the display list.
type Service struct {
	mu      sync.Mutex
	repo    Repository
	drafts  DraftCache
	display *DisplayList
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDrafts sets the draft cache cleared after a successful save.
func WithDrafts(c DraftCache) ServiceOption {
	return func(s *Service) {
		s.drafts = c
	}
}

// WithServiceLogger sets the logger used to report failures.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		display: &DisplayList{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Repository returns the underlying storage.
func (s *Service) Repository() Repository {
	return s.repo
}

// Display returns the list kept in sync with storage.
func (s *Service) Display() *DisplayList {
	return s.display
}

// Save persists the trimmed field value as a new note.
//
// Workflow:
//  1. Reject blank input with ErrEmptyInput (nothing is touched).
//  2. Create the note. On failure the field, the draft and the display stay as they were.
//  3. Clear the field and its draft.
//  4. Reload every note and re-render the display with d.
func (s *Service) Save(ctx context.Context, field Field, d Directive) (int64, error) {
	content := strings.TrimSpace(field.Value())
	if content == "" {
		return 0, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.Create(ctx, content)
	if err != nil {
		s.logger.Error("save note failed", "error", err, "content", content)
		return 0, err
	}
	s.logger.Debug("note saved", "id", id)

	field.Clear()
	if s.drafts != nil {
		s.drafts.Clear(field.Key())
	}

	if _, err := s.refresh(ctx, d); err != nil {
		return id, fmt.Errorf("note %d saved but list not refreshed: %w", id, err)
	}
	return id, nil
}

// Refresh reloads every note, sorts it with d and replaces the display.
// On failure the display keeps its previous contents.
func (s *Service) Refresh(ctx context.Context, d Directive) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx, d)
}

func (s *Service) refresh(ctx context.Context, d Directive) ([]string, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list notes failed", "error", err)
		return nil, err
	}

	s.display.Replace(Sort(notes, d))
	return s.display.Items(), nil
}

// ListNotes returns the stored notes ordered by d without touching the display.
func (s *Service) ListNotes(ctx context.Context, d Directive) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Sort(notes, d), nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, fmt.Errorf("repository does not support watching")
	}
	return w.Watch(ctx)
}

// Close releases the repository connection if it holds one.
func (s *Service) Close() error {
	if c, ok := s.repo.(Closer); ok {
		return c.Close()
	}
	return nil
}
