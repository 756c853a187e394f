// Package health provides health status tracking and aggregation for
// governor components.
//
// Components report their state to a shared Monitor:
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("runner", "processing")
//	monitor.UpdateDegraded("adaptive", "budget pinned at floor")
//
// The service package serves Monitor.AggregateHealth over /healthz. A single
// degraded component degrades the aggregate; a single unhealthy component
// makes it unhealthy.
//
// The pipeline reports degraded health whenever the adaptive controller has
// pinned its budget at the floor, which is the operator signal that the
// system is saturated rather than failing.
package health
