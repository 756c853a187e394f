package adaptive

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360/governor/errors"
)

// Defaults for the degradation step
const (
	// DefaultFloor is the minimum permitted budget
	DefaultFloor = 20
	// DefaultDegradeFactor is the multiplicative shrink applied per step
	DefaultDegradeFactor = 0.75
)

// ApplyFunc commits a new budget to the consuming subsystem. It is invoked
// only when the budget actually decreased, outside the controller's lock,
// and must not block.
type ApplyFunc func(budget int)

// WarnFunc observes a low-throughput sample. It is invoked on every sample
// below the threshold, whether or not the budget moved, outside the
// controller's lock.
type WarnFunc func(fps float64, budget int)

// Controller translates a stream of periodic throughput samples into
// monotonically decreasing budget adjustments, never dropping below the
// configured floor. Samples at or above the threshold are ignored entirely.
//
// The budget is owned exclusively by the controller: consumers read it
// through the ApplyFunc and must never write it directly.
type Controller struct {
	mu      sync.Mutex
	budget  int
	enabled bool

	threshold float64
	floor     int
	factor    float64

	apply   ApplyFunc
	warn    WarnFunc
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Controller
type Option func(*Controller)

// WithFloor overrides the minimum permitted budget
func WithFloor(floor int) Option {
	return func(c *Controller) {
		c.floor = floor
	}
}

// WithDegradeFactor overrides the per-step shrink factor
func WithDegradeFactor(factor float64) Option {
	return func(c *Controller) {
		c.factor = factor
	}
}

// WithApply sets the budget-setter invoked on each decrease
func WithApply(apply ApplyFunc) Option {
	return func(c *Controller) {
		c.apply = apply
	}
}

// WithWarn sets the low-throughput observer
func WithWarn(warn WarnFunc) Option {
	return func(c *Controller) {
		c.warn = warn
	}
}

// WithLogger sets the logger; defaults to slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors
func WithMetrics(metrics *Metrics) Option {
	return func(c *Controller) {
		c.metrics = metrics
	}
}

// New creates a Controller with the given starting budget and threshold.
// Configuration is validated here; OnSample never fails mid-stream.
func New(initialBudget int, threshold float64, opts ...Option) (*Controller, error) {
	c := &Controller{
		budget:    initialBudget,
		enabled:   true,
		threshold: threshold,
		floor:     DefaultFloor,
		factor:    DefaultDegradeFactor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if threshold <= 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("threshold %v must be positive", threshold),
			"Controller", "New", "validate threshold")
	}
	if c.floor < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("floor %d must not be negative", c.floor),
			"Controller", "New", "validate floor")
	}
	if c.factor <= 0 || c.factor >= 1 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("degrade factor %v must be in (0, 1)", c.factor),
			"Controller", "New", "validate degrade factor")
	}
	if initialBudget < c.floor {
		return nil, errors.WrapInvalid(
			fmt.Errorf("initial budget %d below floor %d", initialBudget, c.floor),
			"Controller", "New", "validate initial budget")
	}

	c.metrics.recordBudget(c.budget)
	return c, nil
}

// OnSample processes one throughput sample. Samples below the threshold
// shrink the budget by one degradation step (when not already pinned at the
// floor) and emit a warning regardless; samples at or above the threshold do
// nothing. A disabled controller ignores samples entirely.
//
// Samples must be delivered in measurement order by a single goroutine;
// OnSample never blocks.
func (c *Controller) OnSample(fps float64) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	if fps >= c.threshold {
		c.mu.Unlock()
		return
	}

	newBudget := Degrade(c.budget, c.factor, c.floor)
	changed := newBudget != c.budget
	if changed {
		c.budget = newBudget
	}
	budget := c.budget
	threshold := c.threshold
	apply := c.apply
	warn := c.warn
	c.mu.Unlock()

	c.metrics.recordSample(fps)
	c.metrics.recordWarning()
	if changed {
		c.metrics.recordDegradation()
		c.metrics.recordBudget(budget)
		if apply != nil {
			apply(budget)
		}
	}

	c.logger.Warn("Throughput below threshold",
		"fps", fps,
		"threshold", threshold,
		"budget", budget,
		"degraded", changed)

	if warn != nil {
		warn(fps, budget)
	}
}

// Budget returns the current budget
func (c *Controller) Budget() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget
}

// Floor returns the minimum permitted budget
func (c *Controller) Floor() int {
	return c.floor
}

// Threshold returns the configured throughput threshold
func (c *Controller) Threshold() float64 {
	return c.threshold
}

// AtFloor reports whether the budget is pinned at the floor
func (c *Controller) AtFloor() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget == c.floor
}

// Enable resumes sample processing
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

// Disable suspends sample processing; samples arriving while disabled have
// no effect of any kind.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enabled reports whether the controller is processing samples
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}
