// Package component coordinates the lifecycle of governor building blocks.
//
// Every long-running piece of a governor service implements the Lifecycle
// interface:
//
//	Initialize() error                 // allocate resources, no context
//	Start(ctx context.Context) error   // begin work, context for cancellation
//	Stop(timeout time.Duration) error  // graceful shutdown within timeout
//
// The Manager starts registered components in registration order and stops
// them in reverse, so a component may depend on anything registered before
// it. A failed start rolls back the components already running before
// returning the error.
//
//	mgr := component.NewManager(component.WithMetrics(metrics))
//	mgr.Register("nats", natsComponent)
//	mgr.Register("pipeline", runnerComponent)
//	mgr.Register("events", eventServer)
//
//	if err := mgr.Start(ctx, 10*time.Second); err != nil {
//	    return err
//	}
//	defer mgr.Stop(10 * time.Second)
//
// Components that also implement HealthReporter contribute their own status
// to Manager.Health; the rest are derived from lifecycle state.
package component
