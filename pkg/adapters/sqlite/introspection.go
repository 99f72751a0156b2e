package sqlite

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	SchemaVersion int    `json:"schema_version"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StoreState{
		Path:          s.path,
		Name:          s.config.Name,
		SchemaVersion: CurrentSchemaVersion(),
		Status:        s.status.String(),
	}
	if s.openErr != nil {
		state.Error = s.openErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
