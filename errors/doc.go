// Package errors provides standardized error handling for governor components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input or configuration,
// non-retryable), and Fatal (unrecoverable, stop processing).
//
// Classification lets components make informed decisions about retries and
// degradation without matching on error strings at call sites. It integrates
// with Go's standard error handling: errors.Is(), errors.As(), and wrapping
// chains all work through ClassifiedError.
//
// # Quick Start
//
// Return standard error variables for known conditions:
//
//	if conn == nil {
//	    return errors.ErrNoConnection
//	}
//
// Wrap third-party errors with component context:
//
//	if err := nc.Publish(subject, data); err != nil {
//	    return errors.WrapTransient(err, "NATSNotifier", "PerformanceWarning", "publish")
//	}
//
// Check classification when deciding how to handle a failure:
//
//	if errors.IsTransient(err) {
//	    // safe to retry
//	}
//
// # Scope
//
// Programmer-misuse errors are deliberately excluded from the classification
// scheme. The session package keeps its misuse sentinels (ErrSessionActive,
// ErrNoActiveSession, ErrMaxAttemptsExceeded) as plain errors: they indicate
// defects in the calling code, not runtime conditions to classify or retry.
package errors
