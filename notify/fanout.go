package notify

import (
	"context"
	stderrors "errors"
)

// Fanout delivers each event to every registered notifier. A failing sink
// never blocks delivery to the others; errors are joined and returned after
// all sinks have been attempted.
type Fanout struct {
	sinks []Notifier
}

// NewFanout creates a fanout over the given notifiers; nil entries are
// skipped.
func NewFanout(sinks ...Notifier) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// NotifyQuality delivers a quality warning to all sinks
func (f *Fanout) NotifyQuality(ctx context.Context, warning QualityWarning) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.NotifyQuality(ctx, warning); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// NotifySession delivers a session outcome to all sinks
func (f *Fanout) NotifySession(ctx context.Context, event SessionEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.NotifySession(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
