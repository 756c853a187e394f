package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/health"
	"github.com/c360/governor/metric"
)

// Manager coordinates the lifecycle of registered components. Components
// start in registration order and stop in reverse, so later components can
// depend on earlier ones.
type Manager struct {
	mu         sync.Mutex
	components []*managed
	started    bool

	logger  *slog.Logger
	metrics *metric.Metrics
	monitor *health.Monitor
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger; defaults to slog.Default()
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics wires component status gauges to the framework metrics
func WithMetrics(metrics *metric.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates an empty component manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:  slog.Default(),
		monitor: health.NewMonitor(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a component under a unique name. Registration is rejected
// once the manager has started.
func (m *Manager) Register(name string, component Lifecycle) error {
	if component == nil {
		return errors.WrapInvalid(
			fmt.Errorf("component %q is nil", name),
			"Manager", "Register", "validate component")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return errors.ErrAlreadyStarted
	}
	for _, mc := range m.components {
		if mc.name == name {
			return errors.WrapInvalid(
				fmt.Errorf("component %q already registered", name),
				"Manager", "Register", "check name uniqueness")
		}
	}

	m.components = append(m.components, &managed{
		name:      name,
		component: component,
		state:     StateCreated,
	})
	return nil
}

// Start initializes and starts all components in registration order. The
// first failure stops the sequence; components already started are stopped
// again in reverse order before the error is returned.
func (m *Manager) Start(ctx context.Context, stopTimeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return errors.ErrAlreadyStarted
	}

	for i, mc := range m.components {
		if err := m.startOne(ctx, mc); err != nil {
			m.logger.Error("Component failed to start",
				"component", mc.name,
				"error", err)

			// Roll back the ones already running.
			for j := i - 1; j >= 0; j-- {
				m.stopOne(m.components[j], stopTimeout)
			}
			return errors.Wrap(err, "Manager", "Start", fmt.Sprintf("start component %s", mc.name))
		}
	}

	m.started = true
	m.logger.Info("All components started", "count", len(m.components))
	return nil
}

func (m *Manager) startOne(ctx context.Context, mc *managed) error {
	if err := mc.component.Initialize(); err != nil {
		mc.state = StateFailed
		mc.lastErr = err
		m.recordState(mc)
		return err
	}
	mc.state = StateInitialized
	m.recordState(mc)

	childCtx, cancel := context.WithCancel(ctx)
	if err := mc.component.Start(childCtx); err != nil {
		cancel()
		mc.state = StateFailed
		mc.lastErr = err
		m.recordState(mc)
		return err
	}
	mc.cancel = cancel
	mc.state = StateStarted
	m.recordState(mc)

	m.logger.Info("Component started", "component", mc.name)
	return nil
}

// Stop stops all components in reverse registration order. Every component
// gets a stop attempt even when earlier ones fail; the errors are joined.
func (m *Manager) Stop(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return errors.ErrNotStarted
	}
	m.started = false

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		if err := m.stopOne(m.components[i], timeout); err != nil {
			errs = append(errs, err)
		}
	}

	m.logger.Info("All components stopped")
	return stderrors.Join(errs...)
}

func (m *Manager) stopOne(mc *managed, timeout time.Duration) error {
	if mc.state != StateStarted {
		return nil
	}

	err := mc.component.Stop(timeout)
	if mc.cancel != nil {
		mc.cancel()
		mc.cancel = nil
	}

	if err != nil {
		mc.state = StateFailed
		mc.lastErr = err
		m.recordState(mc)
		m.logger.Error("Component failed to stop",
			"component", mc.name,
			"error", err)
		return errors.Wrap(err, "Manager", "Stop", fmt.Sprintf("stop component %s", mc.name))
	}

	mc.state = StateStopped
	m.recordState(mc)
	m.logger.Info("Component stopped", "component", mc.name)
	return nil
}

func (m *Manager) recordState(mc *managed) {
	if m.metrics != nil {
		m.metrics.RecordComponentStatus(mc.name, int(mc.state))
	}
}

// StateOf returns the lifecycle state of a named component
func (m *Manager) StateOf(name string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mc := range m.components {
		if mc.name == name {
			return mc.state, true
		}
	}
	return StateCreated, false
}

// Health refreshes and aggregates the health of all registered components.
// Components that don't implement HealthReporter contribute a status derived
// from their lifecycle state. The last-known statuses are cached in the
// manager's monitor, so individual components remain queryable via ComponentHealth.
func (m *Manager) Health() health.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mc := range m.components {
		status := m.statusOf(mc)
		m.monitor.Update(mc.name, status)
		if m.metrics != nil {
			m.metrics.RecordHealthStatus(mc.name, status.IsHealthy())
		}
	}

	return m.monitor.AggregateHealth("governor")
}

// ComponentHealth returns the last health status recorded for a named
// component. The value is only as fresh as the most recent Health call.
func (m *Manager) ComponentHealth(name string) (health.Status, bool) {
	return m.monitor.Get(name)
}

func (m *Manager) statusOf(mc *managed) health.Status {
	if reporter, ok := mc.component.(HealthReporter); ok && mc.state == StateStarted {
		return reporter.Health()
	}

	switch mc.state {
	case StateStarted:
		return health.NewHealthy(mc.name, "running")
	case StateFailed:
		msg := "lifecycle failure"
		if mc.lastErr != nil {
			msg = mc.lastErr.Error()
		}
		return health.NewUnhealthy(mc.name, msg)
	default:
		return health.NewDegraded(mc.name, mc.state.String())
	}
}
