package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorUpdateAndGet(t *testing.T) {
	monitor := NewMonitor()

	monitor.UpdateHealthy("reader", "tailing")
	monitor.UpdateDegraded("watcher", "timer-only fallback")

	status, exists := monitor.Get("reader")
	require.True(t, exists)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "reader", status.Component)
	assert.False(t, status.Timestamp.IsZero())

	status, exists = monitor.Get("watcher")
	require.True(t, exists)
	assert.True(t, status.IsDegraded())
	assert.False(t, status.IsHealthy())

	_, exists = monitor.Get("missing")
	assert.False(t, exists)
}

func TestMonitorAnyUnhealthy(t *testing.T) {
	monitor := NewMonitor()

	monitor.UpdateHealthy("reader", "ok")
	monitor.UpdateDegraded("watcher", "timer-only")
	assert.False(t, monitor.AnyUnhealthy(), "degraded must not count as unhealthy")

	monitor.UpdateUnhealthy("engine", "tick loop dead")
	assert.True(t, monitor.AnyUnhealthy())
}

func TestMonitorGetAllIsCopy(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("reader", "ok")

	all := monitor.GetAll()
	all["reader"] = NewUnhealthy("reader", "mutated copy")

	status, _ := monitor.Get("reader")
	assert.True(t, status.IsHealthy())
}

func TestMonitorRemoveAndCount(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("a", "ok")
	monitor.UpdateHealthy("b", "ok")
	assert.Equal(t, 2, monitor.Count())

	monitor.Remove("a")
	assert.Equal(t, 1, monitor.Count())
}
