package platform

import (
	"context"

	"github.com/aretw0/jotter/pkg/core"
)

// New opens the repository under dir and wraps it in a Service.
//
//	svc, err := jotter.New("./notes", jotter.WithAdapter("fs"))
//	defer svc.Close()
func New(dir string, opts ...Option) (*core.Service, error) {
	o := buildOptions(opts)

	repo, err := initWith(context.Background(), dir, o)
	if err != nil {
		return nil, err
	}

	serviceOpts := []core.ServiceOption{core.WithServiceLogger(o.logger)}
	if o.drafts != nil {
		serviceOpts = append(serviceOpts, core.WithDrafts(o.drafts))
	}

	return core.NewService(repo, serviceOpts...), nil
}
