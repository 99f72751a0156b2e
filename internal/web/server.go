// Package web serves the single-page notes widget over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/aretw0/jotter/internal/debounce"
	"github.com/aretw0/jotter/pkg/core"
)

// DraftStore keeps unsaved input per browser session.
type DraftStore interface {
	Get(key string) (string, bool)
	Set(key, text string)
	Clear(key string)
}

// PrefStore persists the sort directive.
type PrefStore interface {
	LoadDirective() (core.Directive, error)
	SaveDirective(d core.Directive) error
	ClearDirective() error
}

type Config struct {
	LoginTTL   time.Duration
	DraftDelay time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type Server struct {
	svc      *core.Service
	drafts   DraftStore
	prefs    PrefStore
	gate     Gate
	debounce *debounce.Debouncer
	validate *validator.Validate
	logger   *slog.Logger
	router   *mux.Router
}

func NewServer(svc *core.Service, drafts DraftStore, prefs PrefStore, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.LoginTTL <= 0 {
		cfg.LoginTTL = 24 * time.Hour
	}

	s := &Server{
		svc:      svc,
		drafts:   drafts,
		prefs:    prefs,
		gate:     Gate{TTL: cfg.LoginTTL, Now: cfg.Now},
		debounce: debounce.New(cfg.DraftDelay),
		validate: validator.New(),
		logger:   cfg.Logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/notes", s.requireLogin(s.handleSave)).Methods(http.MethodPost)
	r.HandleFunc("/draft", s.requireLogin(s.handleDraft)).Methods(http.MethodPost)
	r.HandleFunc("/sort", s.requireLogin(s.handleSort)).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/notes", s.handleAPINotes).Methods(http.MethodGet)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// FlushDrafts writes every pending draft now.
func (s *Server) FlushDrafts() {
	s.debounce.Flush()
}

// Close flushes pending drafts and stops the debouncer.
func (s *Server) Close() {
	s.debounce.Flush()
	s.debounce.Stop()
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.Close()
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.LoggedIn(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
