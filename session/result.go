package session

// FailureReason classifies why an attempt failed. The set is closed and
// enumerable; control flow never branches on free-form strings.
type FailureReason string

const (
	// ReasonUnspecified is the zero value, used when a failure carries no
	// recognized classification.
	ReasonUnspecified FailureReason = "unspecified"
	// ReasonGenerationFailed indicates the generation step itself failed.
	ReasonGenerationFailed FailureReason = "generation_failed"
	// ReasonPolicyViolation indicates the produced output violated a policy.
	ReasonPolicyViolation FailureReason = "policy_violation"
	// ReasonEvaluationFailed indicates the output could not be evaluated.
	ReasonEvaluationFailed FailureReason = "evaluation_failed"
	// ReasonValidationFailed indicates the output failed validation.
	ReasonValidationFailed FailureReason = "validation_failed"
)

// Valid reports whether the reason is one of the recognized values.
func (r FailureReason) Valid() bool {
	switch r {
	case ReasonUnspecified, ReasonGenerationFailed, ReasonPolicyViolation,
		ReasonEvaluationFailed, ReasonValidationFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the reason
func (r FailureReason) String() string {
	return string(r)
}

// AttemptResult is the outcome of a single attempt: either a success carrying
// an opaque value, or a failure carrying a classified reason. Construct with
// Success or Failure; the zero value is a failure with ReasonUnspecified.
type AttemptResult struct {
	ok     bool
	value  any
	reason FailureReason
	err    error
}

// Success returns a successful attempt result carrying value.
func Success(value any) AttemptResult {
	return AttemptResult{ok: true, value: value}
}

// Failure returns a failed attempt result. Unrecognized reasons are recorded
// as ReasonUnspecified rather than rejected, so callers can extend the set
// locally without breaking accounting.
func Failure(reason FailureReason, err error) AttemptResult {
	if !reason.Valid() {
		reason = ReasonUnspecified
	}
	return AttemptResult{reason: reason, err: err}
}

// OK reports whether the attempt succeeded.
func (r AttemptResult) OK() bool {
	return r.ok
}

// Value returns the success value, nil for failures.
func (r AttemptResult) Value() any {
	return r.value
}

// Reason returns the failure classification, ReasonUnspecified for successes.
func (r AttemptResult) Reason() FailureReason {
	if r.ok {
		return ReasonUnspecified
	}
	if r.reason == "" {
		return ReasonUnspecified
	}
	return r.reason
}

// Err returns the failure error, nil for successes.
func (r AttemptResult) Err() error {
	return r.err
}

// Outcome is the terminal result of ExecuteWithRetry.
type Outcome struct {
	// Success reports whether any attempt succeeded.
	Success bool
	// Attempts is the number of attempts actually consumed.
	Attempts int
	// Value carries the successful attempt's value; nil unless Success.
	Value any
	// Err describes the terminal failure (exhaustion or cancellation);
	// nil when Success.
	Err error
}
