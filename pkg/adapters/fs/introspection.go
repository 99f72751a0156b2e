package fs

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path         string `json:"path"`
	SystemDir    string `json:"system_dir"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	NextID       int64  `json:"next_id"`
	IndexedNotes int    `json:"indexed_notes"`
	Error        string `json:"error,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := RepositoryState{
		Path:         r.Path,
		SystemDir:    r.config.SystemDir,
		Name:         r.config.Name,
		Status:       string(r.status),
		IndexedNotes: r.index.size(),
	}
	if r.meta != nil {
		state.Name = r.meta.Name
		state.NextID = r.meta.NextID
	}
	if r.openErr != nil {
		state.Error = r.openErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
