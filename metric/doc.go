// Package metric provides Prometheus metrics infrastructure for governor.
//
// # Overview
//
// The package follows a registry-centric model: a single MetricsRegistry owns
// a private Prometheus registry, pre-populated with framework metrics
// (component status, errors, health, NATS connectivity) plus the Go runtime
// and process collectors. Domain packages register their own collectors
// against the registry under a component/metric key:
//
//	registry := metric.NewMetricsRegistry()
//
//	budgetGauge := prometheus.NewGauge(prometheus.GaugeOpts{
//	    Name: "governor_adaptive_budget",
//	    Help: "Current adaptive resource budget",
//	})
//	if err := registry.Register("adaptive", "budget", budgetGauge); err != nil {
//	    return err
//	}
//
// Duplicate registrations are invalid-use errors (errors.IsInvalid); failures
// inside Prometheus itself are fatal.
//
// # Serving
//
// Server exposes the registry over HTTP:
//
//	srv := metric.NewServer(9090, "/metrics", registry)
//	if err := srv.Start(); err != nil { ... }
//	defer srv.Stop(5 * time.Second)
//
// Server.Handler is also available for embedding the endpoint into another
// mux (the service package does this for its combined endpoint).
package metric
