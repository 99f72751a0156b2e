package fs

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
	"gopkg.in/yaml.v3"
)

const indexVersion = 1

// index holds the non-unique secondary indexes of the notes collection.
// It is derived data: when missing or unreadable it is rebuilt from the notes.
type index struct {
	Version   int                `yaml:"version"`
	Content   map[string][]int64 `yaml:"content"`
	Timestamp map[int64][]int64  `yaml:"timestamp"`

	path  string
	dirty bool
	mu    sync.RWMutex
}

func newIndex(path string) *index {
	return &index{
		Version:   indexVersion,
		Content:   make(map[string][]int64),
		Timestamp: make(map[int64][]int64),
		path:      path,
	}
}

// load reads the index from disk. It reports false when a rebuild is needed.
func (ix *index) load() (bool, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	data, err := os.ReadFile(ix.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read index: %w", err)
	}

	if err := yaml.Unmarshal(data, ix); err != nil || ix.Version != indexVersion {
		ix.reset()
		return false, nil
	}
	if ix.Content == nil {
		ix.Content = make(map[string][]int64)
	}
	if ix.Timestamp == nil {
		ix.Timestamp = make(map[int64][]int64)
	}
	ix.dirty = false
	return true, nil
}

func (ix *index) reset() {
	ix.Version = indexVersion
	ix.Content = make(map[string][]int64)
	ix.Timestamp = make(map[int64][]int64)
	ix.dirty = true
}

// rebuild replaces the index with entries for notes.
func (ix *index) rebuild(notes []core.Note) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.reset()
	for _, n := range notes {
		ix.addLocked(n)
	}
}

func (ix *index) add(n core.Note) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.addLocked(n)
}

func (ix *index) addLocked(n core.Note) {
	ix.Content[n.Content] = append(ix.Content[n.Content], n.ID)
	ix.Timestamp[n.Timestamp] = append(ix.Timestamp[n.Timestamp], n.ID)
	ix.dirty = true
}

// save persists the index if it changed since the last load or save.
func (ix *index) save() error {
	ix.mu.RLock()
	if !ix.dirty {
		ix.mu.RUnlock()
		return nil
	}
	data, err := yaml.Marshal(ix)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := WriteFileAtomic(ix.path, data, 0o644); err != nil {
		return err
	}

	ix.mu.Lock()
	ix.dirty = false
	ix.mu.Unlock()
	return nil
}

func (ix *index) byContent(content string) []int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return slices.Clone(ix.Content[content])
}

func (ix *index) byTimestamp(ts int64) []int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return slices.Clone(ix.Timestamp[ts])
}

// size returns the number of indexed notes.
func (ix *index) size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, ids := range ix.Timestamp {
		n += len(ids)
	}
	return n
}
