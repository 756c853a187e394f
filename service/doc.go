// Package service exposes a governor's runtime state to the outside world.
//
// EventServer serves two endpoints:
//
//   - /healthz returns the aggregated health status as JSON, with 503 for
//     anything short of healthy.
//   - /ws upgrades to a WebSocket and streams governor events: quality
//     warnings and session outcomes, wrapped in a typed envelope.
//
// The server implements notify.Notifier, so the usual wiring is to place it
// in a notification fanout:
//
//	events := service.NewEventServer(cfg.Events.Port,
//	    service.WithHealthSource(mgr.Health),
//	)
//	notifier := notify.NewFanout(logSink, natsSink, events)
//
// It also implements component.Lifecycle and is normally started and stopped
// by the component manager.
package service
