// Package component provides lifecycle management for governor components.
package component

import (
	"context"
	"time"

	"github.com/c360/governor/health"
)

// State represents the current lifecycle state of a component
type State int

const (
	// StateCreated indicates the component was created but not initialized
	StateCreated State = iota
	// StateInitialized indicates the component was initialized but not started
	StateInitialized
	// StateStarted indicates the component is running
	StateStarted
	// StateStopped indicates the component was stopped
	StateStopped
	// StateFailed indicates the component failed during a lifecycle operation
	StateFailed
)

// String returns a string representation of the component state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lifecycle defines components that support full lifecycle management:
//   - Initialize() error                 // setup only, no context
//   - Start(ctx context.Context) error   // start with context passed through
//   - Stop(timeout time.Duration) error  // graceful shutdown with timeout
type Lifecycle interface {
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// HealthReporter is implemented by components that can report their health
type HealthReporter interface {
	Health() health.Status
}

// managed tracks a component and its lifecycle state. The manager stores a
// named child context per component so individual components can be
// cancelled during shutdown; the component itself only ever receives the
// context as a parameter.
type managed struct {
	name      string
	component Lifecycle
	state     State
	cancel    context.CancelFunc
	lastErr   error
}
