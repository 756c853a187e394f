package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/health"
	"github.com/c360/governor/notify"
	"github.com/c360/governor/session"
)

// Default runner configuration
const (
	// DefaultQueueSize bounds the pending task queue
	DefaultQueueSize = 1000

	// DefaultInterval is the dispatch pacing interval
	DefaultInterval = time.Second

	// MinBudget is the lowest dispatch allowance; the budget never drops
	// below it so a fully degraded pipeline still makes progress.
	MinBudget = 1
)

// Processor executes one unit of work. It is called once per attempt; the
// returned result decides whether the runner's retry session continues.
type Processor[T any] func(ctx context.Context, work T) session.AttemptResult

// Runner is a budget-paced task runner. Submitted work queues up in a
// bounded channel; each dispatch interval the runner starts at most Budget()
// tasks, executing every task inside its own bounded retry session.
//
// The budget is the control surface for adaptive degradation: wiring
// SetBudget into an adaptive controller's apply callback throttles dispatch
// when downstream throughput collapses.
type Runner[T any] struct {
	name      string
	queueSize int
	interval  time.Duration
	processor Processor[T]

	queue  chan T
	budget atomic.Int64

	logger         *slog.Logger
	metrics        *Metrics
	sessionMetrics *session.Metrics
	backoff        session.Backoff
	notifier       notify.Notifier
	onComplete     func()

	wg   sync.WaitGroup
	done chan struct{}

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	// Statistics
	submitted atomic.Int64
	dropped   atomic.Int64
	completed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// RunnerOption configures a Runner
type RunnerOption[T any] func(*Runner[T])

// WithQueueSize bounds the pending task queue
func WithQueueSize[T any](size int) RunnerOption[T] {
	return func(r *Runner[T]) {
		if size > 0 {
			r.queueSize = size
		}
	}
}

// WithInterval sets the dispatch pacing interval
func WithInterval[T any](interval time.Duration) RunnerOption[T] {
	return func(r *Runner[T]) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithRunnerLogger sets the logger; defaults to slog.Default()
func WithRunnerLogger[T any](logger *slog.Logger) RunnerOption[T] {
	return func(r *Runner[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunnerMetrics attaches runner-level Prometheus collectors
func WithRunnerMetrics[T any](metrics *Metrics) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.metrics = metrics
	}
}

// WithSessionMetrics shares one set of session collectors across all task
// sessions started by the runner.
func WithSessionMetrics[T any](metrics *session.Metrics) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.sessionMetrics = metrics
	}
}

// WithSessionBackoff sets the backoff used between retry attempts
func WithSessionBackoff[T any](backoff session.Backoff) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.backoff = backoff
	}
}

// WithNotifier publishes every session outcome
func WithNotifier[T any](notifier notify.Notifier) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.notifier = notifier
	}
}

// WithOnComplete registers a hook invoked after every finished task,
// typically a throughput sampler's Mark.
func WithOnComplete[T any](fn func()) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.onComplete = fn
	}
}

// NewRunner creates a budget-paced runner with the given initial dispatch
// allowance per interval. The budget is clamped to MinBudget.
func NewRunner[T any](name string, initialBudget int, processor Processor[T], opts ...RunnerOption[T]) (*Runner[T], error) {
	if processor == nil {
		return nil, errors.WrapInvalid(ErrNilTask, "Runner", "NewRunner", "validate processor")
	}
	if name == "" {
		name = "pipeline"
	}

	r := &Runner[T]{
		name:      name,
		queueSize: DefaultQueueSize,
		interval:  DefaultInterval,
		processor: processor,
		logger:    slog.Default(),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.queue = make(chan T, r.queueSize)
	r.storeBudget(initialBudget)

	return r, nil
}

// Name returns the runner name
func (r *Runner[T]) Name() string {
	return r.name
}

// Budget returns the current per-interval dispatch allowance
func (r *Runner[T]) Budget() int {
	return int(r.budget.Load())
}

// SetBudget replaces the dispatch allowance, clamping to MinBudget. It takes
// effect on the next dispatch interval.
func (r *Runner[T]) SetBudget(budget int) {
	old := r.Budget()
	r.storeBudget(budget)

	if clamped := r.Budget(); clamped != old {
		r.logger.Info("Dispatch budget changed",
			"runner", r.name,
			"old", old,
			"new", clamped)
	}
}

func (r *Runner[T]) storeBudget(budget int) {
	if budget < MinBudget {
		budget = MinBudget
	}
	r.budget.Store(int64(budget))
	r.metrics.recordBudget(budget)
}

// Submit enqueues one unit of work without blocking. A full queue rejects
// the work with errors.ErrQueueFull.
func (r *Runner[T]) Submit(work T) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}

	select {
	case r.queue <- work:
		r.submitted.Add(1)
		r.metrics.recordSubmitted(len(r.queue))
		return nil
	default:
		r.dropped.Add(1)
		r.metrics.recordDropped()
		return errors.ErrQueueFull
	}
}

// Start launches the dispatch loop. It can be called once.
func (r *Runner[T]) Start(ctx context.Context) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	r.wg.Add(1)
	go r.dispatch(ctx)

	r.logger.Info("Pipeline runner started",
		"runner", r.name,
		"budget", r.Budget(),
		"interval", r.interval)

	return nil
}

// Stop halts dispatch and waits up to timeout for in-flight tasks to finish.
// Queued work that was never dispatched is discarded.
func (r *Runner[T]) Stop(timeout time.Duration) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if !r.started || r.stopped {
		return nil
	}
	r.stopped = true
	close(r.done)

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		r.logger.Info("Pipeline runner stopped", "runner", r.name)
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

// dispatch paces task starts: every interval it drains at most Budget()
// tasks from the queue, each into its own goroutine.
func (r *Runner[T]) dispatch(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			allowance := r.Budget()
		drain:
			for i := 0; i < allowance; i++ {
				select {
				case work := <-r.queue:
					r.wg.Add(1)
					go r.run(ctx, work)
				default:
					break drain
				}
			}
			r.metrics.recordQueueDepth(len(r.queue))
		}
	}
}

// run executes one task inside a bounded retry session
func (r *Runner[T]) run(ctx context.Context, work T) {
	defer r.wg.Done()

	mgr := session.NewManager(
		session.WithName(r.name),
		session.WithLogger(r.logger),
		session.WithMetrics(r.sessionMetrics),
		session.WithBackoff(r.backoff),
	)

	outcome := mgr.ExecuteWithRetry(ctx, func(ctx context.Context) session.AttemptResult {
		return r.processor(ctx, work)
	}, nil)

	r.completed.Add(1)
	if outcome.Success {
		r.succeeded.Add(1)
	} else {
		r.failed.Add(1)
	}
	r.metrics.recordOutcome(outcome.Success)

	if r.onComplete != nil {
		r.onComplete()
	}

	if r.notifier != nil {
		if err := r.notifier.NotifySession(ctx, notify.NewSessionEvent(r.name, outcome)); err != nil {
			r.logger.Debug("Outcome notification failed",
				"runner", r.name,
				"error", err)
		}
	}
}

// Stats returns current runner statistics
func (r *Runner[T]) Stats() Stats {
	return Stats{
		QueueSize:  r.queueSize,
		QueueDepth: len(r.queue),
		Budget:     r.Budget(),
		Submitted:  r.submitted.Load(),
		Dropped:    r.dropped.Load(),
		Completed:  r.completed.Load(),
		Succeeded:  r.succeeded.Load(),
		Failed:     r.failed.Load(),
	}
}

// Stats represents runner statistics
type Stats struct {
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Budget     int   `json:"budget"`
	Submitted  int64 `json:"submitted"`
	Dropped    int64 `json:"dropped"`
	Completed  int64 `json:"completed"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
}

// Health reports the runner's current health. A saturated queue degrades
// the runner; a stopped or never-started runner is unhealthy.
func (r *Runner[T]) Health() health.Status {
	r.lifecycleMu.Lock()
	started, stopped := r.started, r.stopped
	r.lifecycleMu.Unlock()

	metrics := &health.Metrics{
		TasksProcessed: r.completed.Load(),
		ErrorCount:     int(r.failed.Load()),
		Budget:         r.Budget(),
	}

	switch {
	case !started:
		return health.NewUnhealthy(r.name, "runner not started")
	case stopped:
		return health.NewUnhealthy(r.name, "runner stopped")
	case len(r.queue) >= r.queueSize:
		return health.NewDegraded(r.name, "task queue saturated").WithMetrics(metrics)
	default:
		return health.NewHealthy(r.name, "dispatching").WithMetrics(metrics)
	}
}
