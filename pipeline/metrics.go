package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/governor/metric"
)

// Metrics holds Prometheus collectors for runner observability
type Metrics struct {
	queueDepth prometheus.Gauge
	budget     prometheus.Gauge
	submitted  prometheus.Counter
	dropped    prometheus.Counter
	completed  *prometheus.CounterVec // labels: status
}

// NewMetrics creates runner collectors and registers them with the registry
// under the given component name.
func NewMetrics(registry *metric.MetricsRegistry, component string) (*Metrics, error) {
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "governor",
			Subsystem:   "pipeline",
			Name:        "queue_depth",
			Help:        "Current number of queued tasks awaiting dispatch",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "governor",
			Subsystem:   "pipeline",
			Name:        "dispatch_budget",
			Help:        "Per-interval dispatch allowance",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "pipeline",
			Name:        "submitted_total",
			Help:        "Total tasks accepted into the queue",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "pipeline",
			Name:        "dropped_total",
			Help:        "Total tasks rejected because the queue was full",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "pipeline",
			Name:        "completed_total",
			Help:        "Total finished tasks by final status",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"status"}),
	}

	registrations := []struct {
		name      string
		collector prometheus.Collector
	}{
		{"queue_depth", m.queueDepth},
		{"dispatch_budget", m.budget},
		{"submitted_total", m.submitted},
		{"dropped_total", m.dropped},
		{"completed_total", m.completed},
	}
	for _, reg := range registrations {
		if err := registry.Register(component, reg.name, reg.collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) recordBudget(budget int) {
	if m == nil {
		return
	}
	m.budget.Set(float64(budget))
}

func (m *Metrics) recordSubmitted(queueDepth int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.queueDepth.Set(float64(queueDepth))
}

func (m *Metrics) recordDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) recordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) recordOutcome(success bool) {
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.completed.WithLabelValues(status).Inc()
}
