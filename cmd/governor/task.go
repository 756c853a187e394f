package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/natsclient"
	"github.com/c360/governor/pipeline"
	"github.com/c360/governor/session"
)

// NATS subjects for task intake and results
const (
	subjectTaskSubmit = "governor.tasks.submit"
	subjectTaskResult = "governor.tasks.result"
)

// task is one unit of generation work received over NATS
type task struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// taskResult is published after every completed task session
type taskResult struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// newProcessor builds the runner's per-attempt processor: it forwards the
// finished task to the result subject. With NATS disabled results are only
// logged.
func newProcessor(client *natsclient.Client, logger *slog.Logger) pipeline.Processor[task] {
	return func(ctx context.Context, t task) session.AttemptResult {
		result := taskResult{
			ID:          t.ID,
			Kind:        t.Kind,
			Payload:     t.Payload,
			CompletedAt: time.Now().UTC(),
		}

		if client == nil {
			logger.Info("Task completed", "task", t.ID, "kind", t.Kind)
			return session.Success(result)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return session.Failure(session.ReasonValidationFailed, err)
		}

		if err := client.Publish(ctx, subjectTaskResult, data); err != nil {
			return session.Failure(session.ReasonGenerationFailed, err)
		}

		return session.Success(result)
	}
}

// intakeComponent subscribes task submissions to the runner
type intakeComponent struct {
	client *natsclient.Client
	runner *pipeline.Runner[task]
	logger *slog.Logger
}

func (c *intakeComponent) Initialize() error {
	return nil
}

func (c *intakeComponent) Start(ctx context.Context) error {
	return c.client.Subscribe(ctx, subjectTaskSubmit, func(_ context.Context, data []byte) {
		var t task
		if err := json.Unmarshal(data, &t); err != nil {
			c.logger.Warn("Dropping malformed task submission", "error", err)
			return
		}

		if err := c.runner.Submit(t); err != nil {
			if stderrors.Is(err, errors.ErrQueueFull) {
				c.logger.Warn("Task queue full, shedding submission", "task", t.ID)
				return
			}
			c.logger.Error("Task submission rejected", "task", t.ID, "error", err)
		}
	})
}

func (c *intakeComponent) Stop(_ time.Duration) error {
	// Subscriptions are drained when the NATS client closes.
	return nil
}
