package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType string `json:"repository_type"`
	DisplayedNotes int    `json:"displayed_notes"`
	DraftCache     bool   `json:"draft_cache"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		RepositoryType: repoType,
		DisplayedNotes: s.display.Len(),
		DraftCache:     s.drafts != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
