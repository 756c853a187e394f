// Package notify routes governor quality warnings and session outcomes to
// their consumers. Three sinks ship with the framework:
//
//   - LogNotifier writes structured log lines and never fails.
//   - NATSNotifier publishes JSON events to governor.quality.warning and
//     governor.session.outcome over core NATS.
//   - Fanout composes sinks, attempting every one even when some fail.
//
// A typical service wires the fanout into the adaptive controller's warn
// callback and the pipeline's session completion path:
//
//	notifier := notify.NewFanout(
//	    notify.NewLogNotifier(logger),
//	    natsNotifier,
//	)
//
//	ctrl, _ := adaptive.New(100, 30,
//	    adaptive.WithWarn(func(fps float64, budget int) {
//	        notifier.NotifyQuality(ctx, notify.QualityWarning{
//	            Component: "pipeline",
//	            FPS:       fps,
//	            Budget:    budget,
//	            Timestamp: time.Now().UTC(),
//	        })
//	    }),
//	)
//
// Delivery is best effort. Sinks must tolerate concurrent calls and should
// return quickly; anything slow belongs behind its own queue.
package notify
