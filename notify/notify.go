// Package notify publishes quality and session events to interested parties.
package notify

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/c360/governor/session"
)

// QualityWarning reports a throughput sample that fell below the configured
// threshold, together with the budget in force after any degradation.
type QualityWarning struct {
	Component string    `json:"component"`
	FPS       float64   `json:"fps"`
	Budget    int       `json:"budget"`
	AtFloor   bool      `json:"at_floor"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionEvent reports the terminal outcome of one retry session.
type SessionEvent struct {
	Component string    `json:"component"`
	Outcome   string    `json:"outcome"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeCancelled = "cancelled"
)

// NewSessionEvent converts a session outcome into a publishable event
func NewSessionEvent(component string, outcome session.Outcome) SessionEvent {
	e := SessionEvent{
		Component: component,
		Attempts:  outcome.Attempts,
		Timestamp: time.Now().UTC(),
	}

	switch {
	case outcome.Success:
		e.Outcome = OutcomeSuccess
	case stderrors.Is(outcome.Err, session.ErrCancelled):
		e.Outcome = OutcomeCancelled
	default:
		e.Outcome = OutcomeExhausted
	}

	if outcome.Err != nil {
		e.Error = outcome.Err.Error()
	}

	return e
}

// Notifier delivers quality and session events. Implementations must be safe
// for concurrent use and should not block the caller for long; delivery is
// best effort.
type Notifier interface {
	NotifyQuality(ctx context.Context, warning QualityWarning) error
	NotifySession(ctx context.Context, event SessionEvent) error
}

// LogNotifier writes events to a structured logger. It never fails.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by the given logger; a nil logger
// falls back to slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyQuality logs a quality warning
func (n *LogNotifier) NotifyQuality(_ context.Context, warning QualityWarning) error {
	n.logger.Warn("Quality degraded",
		"component", warning.Component,
		"fps", warning.FPS,
		"budget", warning.Budget,
		"at_floor", warning.AtFloor)
	return nil
}

// NotifySession logs a session outcome
func (n *LogNotifier) NotifySession(_ context.Context, event SessionEvent) error {
	if event.Outcome == OutcomeSuccess {
		n.logger.Info("Session completed",
			"component", event.Component,
			"attempts", event.Attempts)
		return nil
	}

	n.logger.Warn("Session failed",
		"component", event.Component,
		"outcome", event.Outcome,
		"attempts", event.Attempts,
		"error", event.Error)
	return nil
}
