// Package session provides bounded-attempt retry sessions for asynchronous
// generation operations.
//
// # Overview
//
// A Manager drives a caller-supplied attempt function through at most
// MaxAttempts (3) tries, stopping on the first success, on cooperative
// cancellation, or on exhaustion. It enforces strict accounting: the first
// attempt of every session is numbered 1, numbers are sequential with no
// gaps, and no session ever consumes more than MaxAttempts attempts.
//
// # Attempt results
//
// Attempt functions report ordinary failures through a closed set of
// classified reasons rather than errors or strings:
//
//	func generate(ctx context.Context) session.AttemptResult {
//	    out, err := client.Generate(ctx, prompt)
//	    if err != nil {
//	        return session.Failure(session.ReasonGenerationFailed, err)
//	    }
//	    if violatesPolicy(out) {
//	        return session.Failure(session.ReasonPolicyViolation, nil)
//	    }
//	    return session.Success(out)
//	}
//
// # Running a session
//
//	mgr := session.NewManager(session.WithName("generator"))
//	outcome := mgr.ExecuteWithRetry(ctx, generate, func(current, max int) {
//	    progress.Set(current, max)
//	})
//	if !outcome.Success {
//	    // outcome.Err distinguishes exhaustion from cancellation
//	}
//
// ExecuteWithRetry owns the session: it calls StartSession internally and
// defers EndSession, so the Manager is reusable after every exit path,
// including a panic inside the attempt function. The exhaustion error message
// states the ceiling ("after 3 attempts"); cancellation produces a distinct
// message with the number of attempts that actually ran.
//
// # Cancellation
//
// Cancellation is cooperative and polled. Cancel (or context cancellation)
// never interrupts an in-flight attempt; it prevents subsequent attempts and
// is observed when control returns to the retry loop. There is no built-in
// timeout: a host needing bounded latency wraps the whole call with
// context.WithTimeout.
//
// # Misuse errors
//
// ErrSessionActive, ErrNoActiveSession, and ErrMaxAttemptsExceeded signal
// incorrect API use (overlapping sessions, incrementing without a session,
// incrementing past the ceiling). They are defects to fix, not conditions to
// retry, and are deliberately kept outside the errors package classification
// scheme.
//
// # Backoff and observability
//
// WithBackoff enables exponential delays between failed attempts (off by
// default: the ceiling, not the pacing, is this package's contract).
// WithMetrics attaches shared Prometheus collectors; one Metrics handle is
// meant to be shared across all Managers of a component.
//
// # Thread safety
//
// All Manager methods are safe for concurrent use. A Manager holds at most
// one active session, so concurrent ExecuteWithRetry calls on one Manager
// fail fast with ErrSessionActive; use one Manager per concurrent consumer.
package session
