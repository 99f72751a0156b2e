package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// Init opens (creating if needed) the notes database under dir and returns
// the ready repository. The caller owns it and should Close it when it
// implements core.Closer.
func Init(dir string, opts ...Option) (core.Repository, error) {
	return initWith(context.Background(), dir, buildOptions(opts))
}

func initWith(ctx context.Context, dir string, o *options) (core.Repository, error) {
	if o.repository != nil {
		if err := o.repository.Initialize(ctx); err != nil {
			return nil, err
		}
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterSQLite:
		repo = sqlite.NewStore(sqlite.Config{
			Dir:       dir,
			Name:      o.name,
			MustExist: o.mustExist,
			Logger:    o.logger,
			Now:       o.now,
		})
	case AdapterFS:
		name := o.name
		if name == "" {
			name = sqlite.DefaultName
		}
		repo = fs.NewRepository(fs.Config{
			Path:      dir,
			Name:      name,
			MustExist: o.mustExist,
			SystemDir: o.systemDir,
			Logger:    o.logger,
			Now:       o.now,
		})
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}

	// The marker lets FindRoot locate the directory from below, whatever the adapter.
	if err := os.MkdirAll(filepath.Join(dir, o.systemDir), 0o755); err != nil {
		o.logger.Warn("could not create system directory", "dir", dir, "error", err)
	}

	o.logger.Debug("repository initialized", "adapter", o.adapter, "dir", dir)
	return repo, nil
}
