package adaptive

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/governor/metric"
)

// Metrics holds Prometheus collectors for adaptive quality observability
type Metrics struct {
	budget       prometheus.Gauge
	lastSample   prometheus.Gauge
	degradations prometheus.Counter
	warnings     prometheus.Counter
}

// NewMetrics creates adaptive collectors and registers them with the
// registry under the given component name.
func NewMetrics(registry *metric.MetricsRegistry, component string) (*Metrics, error) {
	m := &Metrics{
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "governor",
			Subsystem:   "adaptive",
			Name:        "budget",
			Help:        "Current resource budget",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		lastSample: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "governor",
			Subsystem:   "adaptive",
			Name:        "last_low_sample_fps",
			Help:        "Most recent below-threshold throughput sample",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		degradations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "adaptive",
			Name:        "degradations_total",
			Help:        "Total number of budget degradation steps applied",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "governor",
			Subsystem:   "adaptive",
			Name:        "warnings_total",
			Help:        "Total number of low-throughput warnings emitted",
			ConstLabels: prometheus.Labels{"component": component},
		}),
	}

	registrations := []struct {
		name      string
		collector prometheus.Collector
	}{
		{"budget", m.budget},
		{"last_low_sample", m.lastSample},
		{"degradations_total", m.degradations},
		{"warnings_total", m.warnings},
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

func (m *Metrics) recordSample(fps float64) {
	if m == nil {
		return
	}
	m.lastSample.Set(fps)
}

func (m *Metrics) recordDegradation() {
	if m == nil {
		return
	}
	m.degradations.Inc()
}

func (m *Metrics) recordWarning() {
	if m == nil {
		return
	}
	m.warnings.Inc()
}
