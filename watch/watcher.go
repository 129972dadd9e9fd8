// Package watch emits change signals for a single log file. It subscribes to
// OS filesystem events on the file's directory and runs a timer fallback in
// parallel, coalescing both sources into one signal channel so a slow
// consumer never queues more than a single pending wake-up.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JuanjoFuchs/hwinfo-tui/component"
	"github.com/JuanjoFuchs/hwinfo-tui/errors"
	"github.com/JuanjoFuchs/hwinfo-tui/metric"
)

// Metrics holds Prometheus metrics for the file change monitor
type Metrics struct {
	signals            *prometheus.CounterVec
	subscriptionActive prometheus.Gauge
}

// newMetrics creates and registers monitor metrics
func newMetrics(registry *metric.MetricsRegistry, logger *slog.Logger) *Metrics {
	// Return nil if no registry provided (nil input = nil feature pattern)
	if registry == nil {
		return nil
	}

	metrics := &Metrics{
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hwinfo",
			Subsystem: "watch",
			Name:      "signals_total",
			Help:      "Change signals delivered, by source",
		}, []string{"source"}),
		subscriptionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hwinfo",
			Subsystem: "watch",
			Name:      "event_subscription_active",
			Help:      "1 when the OS change subscription is active, 0 in timer-only fallback",
		}),
	}

	if err := registry.RegisterCounterVec("watch", "signals", metrics.signals); err != nil {
		logger.Warn("metric registration failed", "metric", "signals", "error", err)
	}
	if err := registry.RegisterGauge("watch", "subscription_active", metrics.subscriptionActive); err != nil {
		logger.Warn("metric registration failed", "metric", "subscription_active", "error", err)
	}

	return metrics
}

// Deps holds runtime dependencies for the file change monitor
type Deps struct {
	Path         string                  // log file to watch
	PollInterval time.Duration           // timer fallback period
	Logger       *slog.Logger            // runtime dependency
	Registry     *metric.MetricsRegistry // optional metrics registry
}

// Monitor watches one file for growth. Signals are advisory: receiving one
// means "the file may have changed", and a missed event is repaired by the
// timer fallback on the next interval at the latest.
type Monitor struct {
	path         string
	dir          string
	base         string
	pollInterval time.Duration
	logger       *slog.Logger
	metrics      *Metrics

	signals chan struct{}
	watcher *fsnotify.Watcher

	// Lifecycle management
	shutdown chan struct{}
	done     chan struct{}
	running  atomic.Bool
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// Ensure Monitor implements the lifecycle contract
var _ component.Lifecycle = (*Monitor)(nil)

// NewMonitor creates a file change monitor.
func NewMonitor(deps Deps) *Monitor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default().With("component", "watch-monitor")
	}

	return &Monitor{
		path:         deps.Path,
		dir:          filepath.Dir(deps.Path),
		base:         filepath.Base(deps.Path),
		pollInterval: deps.PollInterval,
		logger:       logger,
		metrics:      newMetrics(deps.Registry, logger),
		signals:      make(chan struct{}, 1),
	}
}

// Initialize validates the monitor configuration.
func (m *Monitor) Initialize() error {
	if m.path == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"watch-monitor", "Initialize", "path validation")
	}
	if m.pollInterval <= 0 {
		return errors.WrapInvalid(fmt.Errorf("poll interval %v must be positive", m.pollInterval),
			"watch-monitor", "Initialize", "interval validation")
	}
	return nil
}

// Signals returns the coalesced change signal channel. At most one signal is
// ever pending; additional changes before the consumer drains it are folded
// into the pending one.
func (m *Monitor) Signals() <-chan struct{} {
	return m.signals
}

// EventsActive reports whether the OS event subscription is live. False
// means the monitor is running on the timer fallback alone.
func (m *Monitor) EventsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watcher != nil
}

// Start subscribes to filesystem events and begins the timer fallback. A
// failed event subscription degrades to timer-only operation instead of
// failing the start.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Load() {
		return nil // Already running, idempotent
	}

	m.shutdown = make(chan struct{})
	m.done = make(chan struct{})

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(m.dir)
		if err != nil {
			_ = watcher.Close()
			watcher = nil
		}
	}
	if err != nil {
		// Timer fallback keeps the pipeline alive without OS events.
		m.logger.Warn("filesystem event subscription unavailable, using timer only",
			"dir", m.dir, "error", err)
		watcher = nil
	}
	m.watcher = watcher
	if m.metrics != nil {
		if watcher != nil {
			m.metrics.subscriptionActive.Set(1)
		} else {
			m.metrics.subscriptionActive.Set(0)
		}
	}

	m.running.Store(true)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(m.done)
		m.watchLoop(ctx)
	}()

	m.logger.Info("file change monitor started",
		"path", m.path,
		"poll_interval", m.pollInterval,
		"events", watcher != nil)

	return nil
}

// watchLoop multiplexes OS events and the fallback timer into the signal
// channel until shutdown.
func (m *Monitor) watchLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var watchErrs chan error
	if m.watcher != nil {
		events = m.watcher.Events
		watchErrs = m.watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return

		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Directory-level subscription: only this file's write-like
			// operations matter.
			if filepath.Base(evt.Name) != m.base {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			m.emit("event")

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			m.logger.Warn("filesystem watcher error", "error", err)

		case <-ticker.C:
			m.emit("timer")
		}
	}
}

// emit delivers one coalesced signal without ever blocking.
func (m *Monitor) emit(source string) {
	select {
	case m.signals <- struct{}{}:
		if m.metrics != nil {
			m.metrics.signals.WithLabelValues(source).Inc()
		}
	default:
		// A signal is already pending; this change folds into it.
	}
}

// Stop shuts the monitor down, waiting up to timeout for the watch loop.
func (m *Monitor) Stop(timeout time.Duration) error {
	if !m.running.Load() {
		return nil
	}
	m.running.Store(false)

	m.mu.Lock()
	if m.shutdown != nil {
		select {
		case <-m.shutdown:
		default:
			close(m.shutdown)
		}
	}
	m.mu.Unlock()

	select {
	case <-m.done:
	case <-time.After(timeout):
		return errors.WrapTransient(fmt.Errorf("stop timeout after %v", timeout),
			"watch-monitor", "Stop", "graceful shutdown")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
	if m.metrics != nil {
		m.metrics.subscriptionActive.Set(0)
	}

	return nil
}
