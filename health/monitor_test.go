package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_UpdateAndGet(t *testing.T) {
	monitor := NewMonitor()

	monitor.UpdateHealthy("runner", "processing")

	status, exists := monitor.Get("runner")
	require.True(t, exists)
	assert.Equal(t, "runner", status.Component)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "processing", status.Message)
	assert.False(t, status.Timestamp.IsZero())
}

func TestMonitor_UpdateOverridesComponentName(t *testing.T) {
	monitor := NewMonitor()

	// Status carries a different component name; Update must rewrite it
	monitor.Update("sampler", NewHealthy("wrong-name", "ok"))

	status, exists := monitor.Get("sampler")
	require.True(t, exists)
	assert.Equal(t, "sampler", status.Component)
}

func TestMonitor_GetMissing(t *testing.T) {
	monitor := NewMonitor()

	_, exists := monitor.Get("nope")
	assert.False(t, exists)
}

func TestMonitor_GetAllReturnsCopy(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("a", "ok")
	monitor.UpdateDegraded("b", "slow")

	all := monitor.GetAll()
	require.Len(t, all, 2)

	// Mutating the copy must not affect the monitor
	delete(all, "a")
	_, exists := monitor.Get("a")
	assert.True(t, exists)
}

func TestMonitor_Remove(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("a", "ok")
	monitor.Remove("a")

	_, exists := monitor.Get("a")
	assert.False(t, exists)
	assert.Equal(t, 0, monitor.Count())
}

func TestMonitor_AggregateHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		expected string
	}{
		{
			name:     "empty is healthy",
			statuses: map[string]Status{},
			expected: "healthy",
		},
		{
			name: "all healthy",
			statuses: map[string]Status{
				"a": NewHealthy("a", "ok"),
				"b": NewHealthy("b", "ok"),
			},
			expected: "healthy",
		},
		{
			name: "one degraded",
			statuses: map[string]Status{
				"a": NewHealthy("a", "ok"),
				"b": NewDegraded("b", "budget pinned at floor"),
			},
			expected: "degraded",
		},
		{
			name: "unhealthy wins over degraded",
			statuses: map[string]Status{
				"a": NewDegraded("a", "slow"),
				"b": NewUnhealthy("b", "down"),
			},
			expected: "unhealthy",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			monitor := NewMonitor()
			for name, status := range test.statuses {
				monitor.Update(name, status)
			}

			agg := monitor.AggregateHealth("governor")
			assert.Equal(t, test.expected, agg.Status)
			assert.Len(t, agg.SubStatuses, len(test.statuses))
		})
	}
}

func TestStatus_WithMetricsAndSubStatus(t *testing.T) {
	status := NewHealthy("runner", "ok").WithMetrics(&Metrics{
		Uptime:         time.Minute,
		TasksProcessed: 42,
		Budget:         75,
	})

	require.NotNil(t, status.Metrics)
	assert.Equal(t, int64(42), status.Metrics.TasksProcessed)
	assert.Equal(t, 75, status.Metrics.Budget)

	withSub := status.WithSubStatus(NewDegraded("adaptive", "floor"))
	assert.Len(t, withSub.SubStatuses, 1)
	assert.Empty(t, status.SubStatuses, "original must be unchanged")
}
