// Package pipeline provides a budget-paced task runner for generation
// workloads. Work queues in a bounded channel; every dispatch interval the
// runner starts at most Budget() tasks, and each task executes inside its
// own bounded retry session.
//
// # Usage
//
//	runner, err := pipeline.NewRunner("render", 100,
//	    func(ctx context.Context, job RenderJob) session.AttemptResult {
//	        out, err := render(ctx, job)
//	        if err != nil {
//	            return session.Failure(session.ReasonGenerationFailed, err)
//	        }
//	        return session.Success(out)
//	    },
//	    pipeline.WithInterval[RenderJob](time.Second),
//	    pipeline.WithNotifier[RenderJob](notifier),
//	    pipeline.WithOnComplete[RenderJob](sampler.Mark),
//	)
//	if err != nil {
//	    return err
//	}
//	runner.Start(ctx)
//	defer runner.Stop(10 * time.Second)
//
//	if err := runner.Submit(job); err != nil {
//	    // queue full: shed load upstream
//	}
//
// # Adaptive Control
//
// The budget is the runner's throttle. Wiring SetBudget into an adaptive
// controller closes the loop: the controller degrades the budget when the
// throughput sampler reports low rates, and the runner dispatches fewer
// tasks per interval. SetBudget clamps to MinBudget so even a fully
// degraded runner keeps draining its queue.
//
// Submit never blocks. A full queue returns errors.ErrQueueFull and the
// caller decides whether to retry, shed, or backpressure.
package pipeline
