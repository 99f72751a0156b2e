// Package lifecycle bridges note change events into aretw0/lifecycle so the
// watch loop can be supervised like any other lifecycle source.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jotter/pkg/core"
)

// Source forwards core.Event values as lifecycle events.
type Source struct {
	events    <-chan core.Event
	out       chan lifecycle.Event
	forwarded atomic.Int64
}

// NewSource creates a source reading from events. Nothing flows until Start.
func NewSource(events <-chan core.Event) *Source {
	return &Source{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

// Events returns the bridged stream. It is closed when the input closes or
// the context passed to Start is done.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Forwarded returns how many events have been delivered so far.
func (s *Source) Forwarded() int64 {
	return s.forwarded.Load()
}

func (s *Source) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
					s.forwarded.Add(1)
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

var _ lifecycle.Source = (*Source)(nil)
