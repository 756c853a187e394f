package adaptive

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/governor/errors"
)

// Sampler errors
var (
	// ErrStopTimeout indicates the sampling goroutine did not exit in time
	ErrStopTimeout = stderrors.New("sampler stop timeout")
)

// Sampler measures the throughput of a consuming subsystem and feeds an
// ordered sample stream to a Controller. Hosts call Mark once per processed
// unit (frame, task, message); each interval the sampler converts the count
// into a units-per-second rate and delivers it via Controller.OnSample.
//
// One sampler drives one controller from a single goroutine, which satisfies
// the controller's ordered-delivery requirement.
type Sampler struct {
	controller *Controller
	interval   time.Duration
	logger     *slog.Logger

	count    atomic.Int64
	lastRate atomic.Value // stores float64

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	done        chan struct{}
	loopExited  chan struct{}
}

// SamplerOption configures a Sampler
type SamplerOption func(*Sampler)

// WithSamplerLogger sets the logger; defaults to slog.Default()
func WithSamplerLogger(logger *slog.Logger) SamplerOption {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSampler creates a sampler that delivers one sample per interval to the
// controller.
func NewSampler(controller *Controller, interval time.Duration, opts ...SamplerOption) (*Sampler, error) {
	if controller == nil {
		return nil, errors.WrapInvalid(
			stderrors.New("nil controller"),
			"Sampler", "NewSampler", "validate controller")
	}
	if interval <= 0 {
		return nil, errors.WrapInvalid(
			stderrors.New("interval must be positive"),
			"Sampler", "NewSampler", "validate interval")
	}

	s := &Sampler{
		controller: controller,
		interval:   interval,
		logger:     slog.Default(),
		done:       make(chan struct{}),
		loopExited: make(chan struct{}),
	}
	s.lastRate.Store(float64(0))
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mark records one processed unit
func (s *Sampler) Mark() {
	s.count.Add(1)
}

// MarkN records n processed units
func (s *Sampler) MarkN(n int64) {
	s.count.Add(n)
}

// Rate returns the most recently computed rate in units per second
func (s *Sampler) Rate() float64 {
	return s.lastRate.Load().(float64)
}

// Start launches the sampling loop. It can be called once.
func (s *Sampler) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started {
		return errors.ErrAlreadyStarted
	}
	s.started = true

	go s.loop(ctx)
	return nil
}

// Stop terminates the sampling loop, waiting up to timeout for it to exit.
// Stop is idempotent.
func (s *Sampler) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started {
		return errors.ErrNotStarted
	}
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)

	select {
	case <-s.loopExited:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

func (s *Sampler) loop(ctx context.Context) {
	defer close(s.loopExited)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			n := s.count.Swap(0)
			rate := float64(n) / s.interval.Seconds()
			s.lastRate.Store(rate)
			s.controller.OnSample(rate)
		}
	}
}
