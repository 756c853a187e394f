// Package governor provides a control-plane toolkit for asynchronous
// generation pipelines: bounded retry sessions and adaptive quality control.
//
// # Overview
//
// Generation pipelines (LLM calls, render jobs, enrichment passes) fail in
// classifiable ways and saturate in measurable ways. governor packages the
// two control loops such pipelines need:
//
//   - session: bounded-attempt retry sessions. A session.Manager drives a
//     caller-supplied attempt function through at most three attempts,
//     stopping on first success, cooperative cancellation, or exhaustion,
//     with strict attempt accounting and guaranteed cleanup on every exit
//     path, including panics.
//
//   - adaptive: throughput-driven degradation. An adaptive.Controller
//     converts low throughput samples into monotonically decreasing budget
//     adjustments, never dropping below a configured floor. An
//     adaptive.Sampler measures throughput and feeds the controller.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│           pipeline.Runner           │  budget-paced dispatch,
//	│  (queue, dispatch ticker, sessions) │  one retry session per task
//	└──────┬──────────────────┬───────────┘
//	       │ marks            │ applies budget
//	       ↓                  ↑
//	┌──────────────┐   ┌──────────────────┐
//	│adaptive      │──→│ adaptive         │
//	│.Sampler      │   │ .Controller      │
//	└──────────────┘   └──────┬───────────┘
//	                          │ warnings / outcomes
//	                          ↓
//	           ┌──────────────────────────┐
//	           │  notify (slog, NATS,     │
//	           │  WebSocket event stream) │
//	           └──────────────────────────┘
//
// Supporting packages follow the same shape as the rest of the framework:
//
//   - errors: error classification (transient / invalid / fatal) and wrapping
//   - metric: Prometheus registry, core metrics, and the /metrics server
//   - health: component health statuses and aggregation
//   - config: JSON configuration loading and validation
//   - component: lifecycle interface and ordered start/stop manager
//   - natsclient: NATS connection management for event publication and intake
//   - notify: event boundary (performance warnings, session outcomes)
//   - service: HTTP health endpoint and WebSocket event broadcasting
//
// # Usage
//
// Retry a generation call with progress reporting:
//
//	mgr := session.NewManager()
//	outcome := mgr.ExecuteWithRetry(ctx,
//	    func(ctx context.Context) session.AttemptResult {
//	        text, err := client.Generate(ctx, prompt)
//	        if err != nil {
//	            return session.Failure(session.ReasonGenerationFailed, err)
//	        }
//	        return session.Success(text)
//	    },
//	    func(current, max int) {
//	        slog.Info("attempt", "current", current, "max", max)
//	    },
//	)
//
// Shrink a particle or concurrency budget when throughput drops:
//
//	ctrl, err := adaptive.New(100, 30,
//	    adaptive.WithApply(renderer.SetParticleCount),
//	)
//	// per measurement interval:
//	ctrl.OnSample(measuredFPS)
//
// # Binary
//
// cmd/governor runs the full loop as a daemon: task intake over NATS, retry
// sessions per task, adaptive budget control, and health/metrics/event
// endpoints. See config.Default for the configuration surface.
package governor
