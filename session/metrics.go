package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/governor/metric"
)

// Metrics holds Prometheus collectors for retry session observability.
// One Metrics instance is shared by all Managers of a component (the pipeline
// creates many short-lived Managers against a single Metrics handle).
type Metrics struct {
	sessionsStarted prometheus.Counter
	attemptsTotal   *prometheus.CounterVec // labels: status, reason
	outcomesTotal   *prometheus.CounterVec // labels: outcome
	attemptDuration prometheus.Histogram
}

// Outcome label values
const (
	outcomeSuccess   = "success"
	outcomeExhausted = "exhausted"
	outcomeCancelled = "cancelled"
)

// NewMetrics creates session collectors and registers them with the registry
// under the given component name.
func NewMetrics(registry *metric.MetricsRegistry, component string) (*Metrics, error) {
	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "session",
			Name:        "started_total",
			Help:        "Total number of retry sessions started",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "session",
			Name:        "attempts_total",
			Help:        "Total number of attempts by status and failure reason",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"status", "reason"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "session",
			Name:        "outcomes_total",
			Help:        "Total number of session outcomes (success, exhausted, cancelled)",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"outcome"}),
		attemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "governor",
			Subsystem:   "session",
			Name:        "attempt_duration_seconds",
			Help:        "Duration of individual attempts in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"component": component},
		}),
	}

	registrations := []struct {
		name      string
		collector prometheus.Collector
	}{
		{"sessions_started", m.sessionsStarted},
		{"attempts_total", m.attemptsTotal},
		{"outcomes_total", m.outcomesTotal},
		{"attempt_duration", m.attemptDuration},
	}
	for _, reg := range registrations {
		if err := registry.Register(component, reg.name, reg.collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) recordSessionStart() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *Metrics) recordAttempt(result AttemptResult, duration time.Duration) {
	if m == nil {
		return
	}
	status := "failure"
	if result.OK() {
		status = "success"
	}
	m.attemptsTotal.WithLabelValues(status, result.Reason().String()).Inc()
	m.attemptDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}
