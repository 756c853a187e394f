package main

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/c360/governor/adaptive"
	"github.com/c360/governor/errors"
	"github.com/c360/governor/health"
	"github.com/c360/governor/natsclient"
	"github.com/c360/governor/pipeline"
)

// natsComponent adapts the NATS client to the managed lifecycle
type natsComponent struct {
	client  *natsclient.Client
	timeout time.Duration
}

func (n *natsComponent) Initialize() error {
	return nil
}

func (n *natsComponent) Start(ctx context.Context) error {
	if err := n.client.Connect(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.client.WaitForConnection(waitCtx)
}

func (n *natsComponent) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return n.client.Close(ctx)
}

func (n *natsComponent) Health() health.Status {
	if n.client.IsHealthy() {
		return health.NewHealthy("nats", "connected")
	}
	return health.NewUnhealthy("nats", n.client.Status().String())
}

// metricsComponent adapts the metrics HTTP server
type metricsComponent struct {
	server interface {
		Start() error
		Stop(timeout time.Duration) error
	}
}

func (m *metricsComponent) Initialize() error {
	return nil
}

func (m *metricsComponent) Start(_ context.Context) error {
	return m.server.Start()
}

func (m *metricsComponent) Stop(timeout time.Duration) error {
	return m.server.Stop(timeout)
}

// samplerComponent adapts the throughput sampler
type samplerComponent struct {
	sampler *adaptive.Sampler
}

func (s *samplerComponent) Initialize() error {
	return nil
}

func (s *samplerComponent) Start(ctx context.Context) error {
	return s.sampler.Start(ctx)
}

func (s *samplerComponent) Stop(timeout time.Duration) error {
	err := s.sampler.Stop(timeout)
	if stderrors.Is(err, errors.ErrNotStarted) {
		return nil
	}
	return err
}

// runnerComponent adapts the budget-paced runner
type runnerComponent struct {
	runner *pipeline.Runner[task]
}

func (r *runnerComponent) Initialize() error {
	return nil
}

func (r *runnerComponent) Start(ctx context.Context) error {
	return r.runner.Start(ctx)
}

func (r *runnerComponent) Stop(timeout time.Duration) error {
	return r.runner.Stop(timeout)
}

func (r *runnerComponent) Health() health.Status {
	return r.runner.Health()
}
