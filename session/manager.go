// Package session provides bounded-attempt retry sessions for asynchronous
// generation operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MaxAttempts is the hard ceiling on attempts per session.
const MaxAttempts = 3

// Misuse sentinels. These indicate incorrect use of the Manager API, not
// runtime conditions: they are never retried and never classified.
var (
	// ErrSessionActive is returned by StartSession when a session is already open.
	ErrSessionActive = errors.New("session already active")
	// ErrNoActiveSession is returned by IncrementAttempt with no open session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrMaxAttemptsExceeded is returned by IncrementAttempt at the ceiling.
	ErrMaxAttemptsExceeded = errors.New("maximum attempts exceeded")
)

// Terminal outcome sentinels, surfaced through Outcome.Err.
var (
	// ErrExhausted marks an outcome where all permitted attempts failed.
	ErrExhausted = errors.New("attempts exhausted")
	// ErrCancelled marks an outcome cut short by cooperative cancellation.
	ErrCancelled = errors.New("session cancelled")
)

// AttemptFunc is one invocation of the caller's operation. Ordinary failures
// are reported through the AttemptResult failure variant, never by panicking;
// a panic is treated as a defect, and the deferred EndSession still runs so
// the Manager stays reusable.
type AttemptFunc func(ctx context.Context) AttemptResult

// ProgressFunc observes attempt progress. It is called before each attempt
// with the 1-based attempt number and the ceiling. It must not block.
type ProgressFunc func(current, max int)

// Manager drives a caller-supplied attempt function through at most
// MaxAttempts tries, with strict attempt accounting and a guarantee that no
// session outlives its ExecuteWithRetry call.
//
// A Manager holds at most one active session. All methods are safe for
// concurrent use; ExecuteWithRetry itself must not be called concurrently on
// one Manager (the second call fails with ErrSessionActive).
type Manager struct {
	mu           sync.Mutex
	active       bool
	attemptCount int
	cancelled    bool

	name    string
	logger  *slog.Logger
	metrics *Metrics
	backoff Backoff
}

// Option configures a Manager
type Option func(*Manager)

// WithName sets the manager name used in log records
func WithName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// WithLogger sets the logger; defaults to slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics attaches shared session metrics
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithBackoff enables delays between failed attempts
func WithBackoff(backoff Backoff) Option {
	return func(m *Manager) {
		m.backoff = backoff
	}
}

// NewManager creates a Manager in the inactive state
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		name:   "session",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSession opens a new session. It fails with ErrSessionActive if a
// session is already open. A fresh session has zero attempts and a cleared
// cancellation flag.
func (m *Manager) StartSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return ErrSessionActive
	}
	m.active = true
	m.attemptCount = 0
	m.cancelled = false

	m.metrics.recordSessionStart()
	return nil
}

// IncrementAttempt consumes one attempt. It fails with ErrNoActiveSession
// when no session is open, and with ErrMaxAttemptsExceeded when the ceiling
// has been reached; in both cases the counter is unchanged.
func (m *Manager) IncrementAttempt() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return ErrNoActiveSession
	}
	if m.attemptCount >= MaxAttempts {
		return ErrMaxAttemptsExceeded
	}
	m.attemptCount++
	return nil
}

// CanRetry reports whether another attempt is permitted: a session is active,
// the ceiling has not been reached, and cancellation has not been requested.
func (m *Manager) CanRetry() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active && m.attemptCount < MaxAttempts && !m.cancelled
}

// Cancel requests cooperative cancellation of the active session. It does not
// interrupt an in-flight attempt; it prevents subsequent attempts. Cancel is
// idempotent and is a no-op when no session is active.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		m.cancelled = true
	}
}

// EndSession returns the Manager to the inactive state. It always succeeds
// and may be called any number of times, so cleanup paths can call it
// unconditionally.
func (m *Manager) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = false
	m.attemptCount = 0
	m.cancelled = false
}

// AttemptCount returns the number of attempts consumed in the current
// session, zero when no session is active.
func (m *Manager) AttemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.attemptCount
}

// Active reports whether a session is currently open
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active
}

func (m *Manager) isCancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cancelled
}

// ExecuteWithRetry runs a full retry session: it opens a session, invokes fn
// up to MaxAttempts times, and closes the session on every exit path,
// including a panic inside fn.
//
// onAttempt, when non-nil, is called before each attempt with the 1-based
// attempt number. Attempt numbers within a session are strictly sequential
// starting at 1; sequential ExecuteWithRetry calls on one Manager are fully
// independent.
//
// The loop stops on the first success, on cooperative cancellation (Cancel
// called during fn, or ctx done), or when the ceiling is reached. Cancellation
// never interrupts an in-flight attempt; it takes effect when control returns
// to the loop.
func (m *Manager) ExecuteWithRetry(ctx context.Context, fn AttemptFunc, onAttempt ProgressFunc) Outcome {
	if err := m.StartSession(); err != nil {
		return Outcome{Success: false, Err: err}
	}
	defer m.EndSession()

	attempt := 0
	var lastErr error
	for m.CanRetry() {
		if err := m.IncrementAttempt(); err != nil {
			// Unreachable while CanRetry guards the loop; kept as a hard
			// failure rather than a silent break.
			return m.finish(Outcome{Success: false, Attempts: attempt, Err: err})
		}
		attempt++

		if onAttempt != nil {
			onAttempt(attempt, MaxAttempts)
		}

		start := time.Now()
		result := fn(ctx)
		m.metrics.recordAttempt(result, time.Since(start))

		if result.OK() {
			m.logger.Debug("Attempt succeeded", "manager", m.name, "attempt", attempt)
			return m.finish(Outcome{Success: true, Attempts: attempt, Value: result.Value()})
		}

		if m.isCancelled() || ctx.Err() != nil {
			m.logger.Debug("Session cancelled", "manager", m.name, "attempts", attempt)
			return m.finish(Outcome{
				Success:  false,
				Attempts: attempt,
				Err:      fmt.Errorf("%w after %d attempts", ErrCancelled, attempt),
			})
		}

		lastErr = result.Err()
		m.logger.Debug("Attempt failed",
			"manager", m.name,
			"attempt", attempt,
			"reason", result.Reason().String(),
			"error", lastErr)

		if attempt < MaxAttempts {
			if err := m.backoff.Wait(ctx, attempt); err != nil {
				return m.finish(Outcome{
					Success:  false,
					Attempts: attempt,
					Err:      fmt.Errorf("%w after %d attempts", ErrCancelled, attempt),
				})
			}
		}
	}

	// The loop can also exit through a concurrent Cancel between the
	// post-attempt check and the next CanRetry.
	if m.isCancelled() && attempt < MaxAttempts {
		return m.finish(Outcome{
			Success:  false,
			Attempts: attempt,
			Err:      fmt.Errorf("%w after %d attempts", ErrCancelled, attempt),
		})
	}

	m.logger.Warn("Session exhausted", "manager", m.name, "attempts", MaxAttempts)
	err := fmt.Errorf("%w: no attempt succeeded after %d attempts", ErrExhausted, MaxAttempts)
	if lastErr != nil {
		err = fmt.Errorf("%w: %w", err, lastErr)
	}
	return m.finish(Outcome{
		Success:  false,
		Attempts: MaxAttempts,
		Err:      err,
	})
}

// finish records outcome metrics and passes the outcome through
func (m *Manager) finish(outcome Outcome) Outcome {
	switch {
	case outcome.Success:
		m.metrics.recordOutcome(outcomeSuccess)
	case errors.Is(outcome.Err, ErrCancelled):
		m.metrics.recordOutcome(outcomeCancelled)
	case errors.Is(outcome.Err, ErrExhausted):
		m.metrics.recordOutcome(outcomeExhausted)
	}
	return outcome
}

// ExecuteTyped runs fn through mgr and returns the success value as T.
// It mirrors the relationship between retry-with-result helpers and their
// untyped counterparts: the Outcome still carries the full accounting.
func ExecuteTyped[T any](ctx context.Context, mgr *Manager, fn func(ctx context.Context) (T, AttemptResult)) (T, Outcome) {
	var value T
	outcome := mgr.ExecuteWithRetry(ctx, func(ctx context.Context) AttemptResult {
		v, result := fn(ctx)
		if result.OK() {
			value = v
		}
		return result
	}, nil)
	return value, outcome
}
