package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/errors"
)

func newTestGauge(name string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "test gauge",
	})
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := newTestGauge("test_budget")
	require.NoError(t, registry.Register("adaptive", "budget", gauge))

	assert.True(t, registry.Unregister("adaptive", "budget"))
	assert.False(t, registry.Unregister("adaptive", "budget"), "second unregister should report missing")
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := newTestGauge("test_budget")
	require.NoError(t, registry.Register("adaptive", "budget", gauge))

	err := registry.Register("adaptive", "budget", newTestGauge("test_budget_2"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegistry_PrometheusNameConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NoError(t, registry.Register("adaptive", "budget", newTestGauge("same_name")))

	// Different registry key, same Prometheus metric name
	err := registry.Register("pipeline", "budget", newTestGauge("same_name"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegistry_CoreMetricsRegistered(t *testing.T) {
	registry := NewMetricsRegistry()

	core := registry.CoreMetrics()
	require.NotNil(t, core)

	// Core metrics must be usable immediately
	core.RecordComponentStatus("runner", 2)
	core.RecordError("runner", "transient")
	core.RecordHealthStatus("runner", true)
	core.RecordNATSStatus(false)
	core.RecordNATSReconnect()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["governor_component_status"])
	assert.True(t, names["governor_errors_total"])
	assert.True(t, names["governor_health_status"])
	assert.True(t, names["governor_nats_connected"])
	assert.True(t, names["governor_nats_reconnects_total"])
}
