package sqlite

import (
	"context"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
)

// Watch reports writes to the database file (and its WAL) made by any process.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}
	return fs.WatchDir(ctx, s.config.Dir, s.config.Name+".db*", s.config.Logger)
}

var _ core.Watchable = (*Store)(nil)
