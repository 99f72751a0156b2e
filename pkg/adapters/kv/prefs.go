package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
)

const (
	// PrefsFileName is the preferences file inside the system directory.
	PrefsFileName = "prefs.yaml"

	sortKey = "sort"
)

// Prefs is a persistent string key/value file, rewritten atomically on change.
type Prefs struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	loaded bool
}

// NewPrefs creates a preference store backed by path. The file is read lazily.
func NewPrefs(path string) *Prefs {
	return &Prefs{path: path}
}

// PrefsPath returns the preferences location for a data directory.
func PrefsPath(dir, systemDir string) string {
	return filepath.Join(dir, systemDir, PrefsFileName)
}

// Path returns the backing file.
func (p *Prefs) Path() string {
	return p.path
}

func (p *Prefs) load() error {
	if p.loaded {
		return nil
	}

	values := make(map[string]string)
	data, err := os.ReadFile(p.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read prefs: %w", err)
	default:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("parse prefs %s: %w", p.path, err)
		}
		if values == nil {
			values = make(map[string]string)
		}
	}

	p.values = values
	p.loaded = true
	return nil
}

func (p *Prefs) flush() error {
	data, err := yaml.Marshal(p.values)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create prefs directory: %w", err)
	}
	return fs.WriteFileAtomic(p.path, data, 0o644)
}

// Get returns the value stored under key.
func (p *Prefs) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(); err != nil {
		return "", false, err
	}
	v, ok := p.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (p *Prefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(); err != nil {
		return err
	}
	if cur, ok := p.values[key]; ok && cur == value {
		return nil
	}

	prev, had := p.values[key]
	p.values[key] = value
	if err := p.flush(); err != nil {
		if had {
			p.values[key] = prev
		} else {
			delete(p.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key.
func (p *Prefs) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(); err != nil {
		return err
	}
	prev, ok := p.values[key]
	if !ok {
		return nil
	}

	delete(p.values, key)
	if err := p.flush(); err != nil {
		p.values[key] = prev
		return err
	}
	return nil
}

// LoadDirective returns the stored sort directive, or the default when none is set.
func (p *Prefs) LoadDirective() (core.Directive, error) {
	v, ok, err := p.Get(sortKey)
	if err != nil {
		return core.DefaultDirective, err
	}
	if !ok {
		return core.DefaultDirective, nil
	}
	return core.ParseDirective(v), nil
}

// SaveDirective persists d as the sort preference.
func (p *Prefs) SaveDirective(d core.Directive) error {
	return p.Set(sortKey, string(d))
}

// ClearDirective drops the sort preference so the default applies again.
func (p *Prefs) ClearDirective() error {
	return p.Delete(sortKey)
}
