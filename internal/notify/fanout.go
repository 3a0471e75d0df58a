package notify

import (
	"context"
	"errors"
	"fmt"

	"listrik/internal/core"
)

// Noop drops every event. It stands in when no sink is configured.
type Noop struct{}

func (Noop) Publish(context.Context, core.LedgerEvent) error { return nil }
func (Noop) Close() error                                    { return nil }

type named struct {
	sink SinkType
	pub  Publisher
}

// Fanout publishes each event to every sink; one failing sink does not stop
// the others.
type Fanout struct {
	sinks []named
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(sink SinkType, p Publisher) {
	f.sinks = append(f.sinks, named{sink: sink, pub: p})
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Publish(ctx context.Context, ev core.LedgerEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.pub.Publish(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.sink, err))
		}
	}
	return errors.Join(errs...)
}

// Forget passes an ended session to every sink that implements Forgetter.
func (f *Fanout) Forget(ctx context.Context, sessionID string) error {
	var errs []error
	for _, s := range f.sinks {
		fg, ok := s.pub.(Forgetter)
		if !ok {
			continue
		}
		if err := fg.Forget(ctx, sessionID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.sink, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks in reverse order of registration.
func (f *Fanout) Close() error {
	var errs []error
	for i := len(f.sinks) - 1; i >= 0; i-- {
		if err := f.sinks[i].pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.sinks[i].sink, err))
		}
	}
	return errors.Join(errs...)
}
