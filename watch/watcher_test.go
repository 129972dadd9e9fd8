package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanjoFuchs/hwinfo-tui/metric"
)

func newTestMonitor(t *testing.T, interval time.Duration) (*Monitor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensors.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time,Temp [°C]\n"), 0o644))

	m := NewMonitor(Deps{Path: path, PollInterval: interval})
	require.NoError(t, m.Initialize())
	return m, path
}

func waitSignal(t *testing.T, m *Monitor, within time.Duration) {
	t.Helper()
	select {
	case <-m.Signals():
	case <-time.After(within):
		t.Fatal("no change signal received")
	}
}

func TestInitializeRejectsBadConfig(t *testing.T) {
	assert.Error(t, NewMonitor(Deps{Path: "", PollInterval: time.Second}).Initialize())
	assert.Error(t, NewMonitor(Deps{Path: "x.csv", PollInterval: 0}).Initialize())
}

func TestTimerSignals(t *testing.T) {
	m, _ := newTestMonitor(t, 20*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(time.Second) }()

	waitSignal(t, m, time.Second)
}

func TestFileWriteSignals(t *testing.T) {
	m, path := newTestMonitor(t, time.Hour) // timer effectively disabled

	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(time.Second) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("13.08.2025,13:58:00.000,70.0\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	waitSignal(t, m, 2*time.Second)
}

func TestSignalsCoalesce(t *testing.T) {
	m, _ := newTestMonitor(t, 10*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(time.Second) }()

	// Let several timer periods elapse without draining; the channel must
	// hold at most one pending signal.
	time.Sleep(100 * time.Millisecond)

	waitSignal(t, m, time.Second)
	select {
	case <-m.Signals():
		// A second signal may race in after the drain; draining twice in a
		// row more than once means signals queued beyond capacity one.
		select {
		case <-m.Signals():
			t.Fatal("signals queued beyond a single pending wake-up")
		default:
		}
	default:
	}
}

func TestMetricsRegisteredThroughRegistry(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	path := filepath.Join(t.TempDir(), "sensors.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time,Temp [°C]\n"), 0o644))

	m := NewMonitor(Deps{Path: path, PollInterval: 20 * time.Millisecond, Registry: registry})
	require.NoError(t, m.Initialize())
	require.NotNil(t, m.metrics)

	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(time.Second) }()

	waitSignal(t, m, time.Second)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	var subscription, signals bool
	for _, fam := range families {
		switch fam.GetName() {
		case "hwinfo_watch_event_subscription_active":
			subscription = true
		case "hwinfo_watch_signals_total":
			signals = true
		}
	}
	assert.True(t, subscription)
	assert.True(t, signals)

	// Metrics are held under the component-scoped keys.
	assert.False(t, registry.Unregister("watch", "missing"))
	assert.True(t, registry.Unregister("watch", "signals"))
}

func TestStartIsIdempotent(t *testing.T) {
	m, _ := newTestMonitor(t, 50*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()))
	assert.NoError(t, m.Stop(time.Second))
}

func TestStopBeforeStart(t *testing.T) {
	m, _ := newTestMonitor(t, 50*time.Millisecond)
	assert.NoError(t, m.Stop(time.Second))
}

func TestStopTerminatesLoop(t *testing.T) {
	m, _ := newTestMonitor(t, 20*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(time.Second))

	select {
	case <-m.done:
	default:
		t.Fatal("watch loop still running after Stop")
	}
}
