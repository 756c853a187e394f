package pipeline

import "errors"

// Sentinel errors for runner lifecycle
var (
	// ErrNotStarted indicates the runner hasn't been started yet
	ErrNotStarted = errors.New("pipeline runner not started")

	// ErrStopped indicates the runner has been stopped
	ErrStopped = errors.New("pipeline runner stopped")

	// ErrAlreadyStarted indicates Start was called on a running runner
	ErrAlreadyStarted = errors.New("pipeline runner already started")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrStopTimeout indicates in-flight tasks didn't finish within the timeout
	ErrStopTimeout = errors.New("timeout waiting for tasks to stop")
)
