// Package engine runs the ingestion pipeline: a single-goroutine tick loop
// that drains file change signals, pulls newly appended rows through the
// reader, recomputes windowed statistics, and publishes immutable snapshots.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JuanjoFuchs/hwinfo-tui/component"
	"github.com/JuanjoFuchs/hwinfo-tui/config"
	"github.com/JuanjoFuchs/hwinfo-tui/errors"
	"github.com/JuanjoFuchs/hwinfo-tui/health"
	"github.com/JuanjoFuchs/hwinfo-tui/hwlog"
	"github.com/JuanjoFuchs/hwinfo-tui/metric"
	"github.com/JuanjoFuchs/hwinfo-tui/sensor"
	"github.com/JuanjoFuchs/hwinfo-tui/stats"
	"github.com/JuanjoFuchs/hwinfo-tui/units"
	"github.com/JuanjoFuchs/hwinfo-tui/watch"
)

// Deps holds runtime dependencies for the engine
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger            // runtime dependency
	Registry *metric.MetricsRegistry // optional metrics registry
	Health   *health.Monitor         // optional health monitor
}

// Engine owns the whole pipeline. All reads and writes of sensor history
// happen on the tick goroutine, so the store needs no locking; the only
// cross-goroutine surface is the published snapshot pointer.
type Engine struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *metric.MetricsRegistry
	metrics  *metric.Metrics
	health   *health.Monitor

	store   *sensor.Store
	reader  *hwlog.Reader
	grouper *units.Grouper
	monitor *watch.Monitor

	snapshot atomic.Pointer[Snapshot]

	// Lifecycle management
	shutdown chan struct{}
	done     chan struct{}
	running  atomic.Bool
	mu       sync.Mutex
}

// Ensure Engine implements the lifecycle contract
var _ component.Lifecycle = (*Engine)(nil)

// New creates an engine from validated configuration.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default().With("component", "engine")
	}

	var metrics *metric.Metrics
	if deps.Registry != nil {
		metrics = deps.Registry.CoreMetrics()
	}

	return &Engine{
		cfg:      deps.Config,
		logger:   logger,
		registry: deps.Registry,
		metrics:  metrics,
		health:   deps.Health,
	}
}

// Initialize opens the log file, resolves its encoding, selects sensor
// columns and assigns unit groups. Any failure here is fatal: the engine
// never starts partially.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.cfg.Validate(); err != nil {
		return errors.WrapInvalid(err, "engine", "Initialize", "config validation")
	}

	e.store = sensor.NewStore(e.cfg.Capacity)

	reader, err := hwlog.Open(hwlog.Deps{
		Path:      e.cfg.Path,
		Encodings: e.cfg.Encodings,
		Sensors:   e.cfg.Sensors,
		Store:     e.store,
		Logger:    e.logger.With("component", "hwlog-reader"),
		Metrics:   e.metrics,
	})
	if err != nil {
		return err
	}
	e.reader = reader

	e.grouper = units.NewGrouper()
	for _, def := range reader.Columns() {
		if _, ok := e.grouper.Admit(def.Column(), def.RawUnit); !ok {
			e.logger.Warn("sensor excluded, third distinct unit",
				"sensor", def.Column(), "unit", def.Unit)
		}
	}

	e.monitor = watch.NewMonitor(watch.Deps{
		Path:         e.cfg.Path,
		PollInterval: e.cfg.PollInterval,
		Logger:       e.logger.With("component", "watch-monitor"),
		Registry:     e.registry,
	})
	if err := e.monitor.Initialize(); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.SensorsTracked.Set(float64(e.store.Count()))
	}

	e.logger.Info("engine initialized",
		"path", e.cfg.Path,
		"sensors", e.store.Count(),
		"excluded", len(e.grouper.Rejections()),
		"encoding", reader.Cursor().Encoding)

	return nil
}

// Snapshot returns the most recently published snapshot, or nil before the
// engine has started.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Rejections returns the sensors permanently excluded by unit grouping.
func (e *Engine) Rejections() []units.Rejection {
	return e.grouper.Rejections()
}

// Start performs the initial read, publishes the first snapshot, starts the
// file change monitor and launches the tick loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reader == nil {
		return errors.Wrap(errors.ErrNotStarted, "engine", "Start", "initialization check")
	}
	if e.running.Load() {
		return nil // Already running, idempotent
	}

	e.shutdown = make(chan struct{})
	e.done = make(chan struct{})

	// Consumers must never observe a nil snapshot after Start returns.
	if _, err := e.reader.Poll(); err != nil {
		e.logger.Warn("initial read failed, starting with empty snapshot", "error", err)
	}
	e.publish()

	if err := e.monitor.Start(ctx); err != nil {
		return err
	}
	e.updateHealth()

	e.running.Store(true)

	go func() {
		defer close(e.done)
		e.run(ctx)
	}()

	e.logger.Info("engine started", "refresh_interval", e.cfg.RefreshInterval)
	return nil
}

// run is the cooperative tick loop. Ticks never overlap: a slow tick simply
// delays the next one.
func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.shutdown:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick drains the pending change signal, polls the reader when signaled,
// and publishes a fresh snapshot.
func (e *Engine) tick() {
	start := time.Now()

	signaled := false
	select {
	case <-e.monitor.Signals():
		signaled = true
	default:
	}

	if signaled {
		if _, err := e.reader.Poll(); err != nil {
			e.logger.Warn("poll failed, retrying next tick", "error", err)
			if e.health != nil {
				e.health.UpdateDegraded("reader", err.Error())
			}
		} else if e.health != nil {
			e.health.UpdateHealthy("reader", "polling")
		}
	}

	e.publish()

	if e.metrics != nil {
		e.metrics.TicksTotal.Inc()
		e.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}
}

// publish recomputes windowed statistics and swaps in a new snapshot.
func (e *Engine) publish() {
	cutoff := time.Now().Add(-e.cfg.TimeWindow)

	defs := e.reader.Columns()
	sensors := make([]SensorSnapshot, 0, len(defs))
	for _, def := range defs {
		name := def.Column()
		axis, ok := e.grouper.Assignment(name)
		if !ok || axis == units.AxisNone {
			continue
		}
		window := e.store.Since(name, cutoff)
		sensors = append(sensors, SensorSnapshot{
			Definition: def,
			Axis:       axis,
			Summary:    stats.Compute(name, window),
			Window:     window,
		})
	}

	e.snapshot.Store(&Snapshot{
		ID:       uuid.New(),
		TakenAt:  time.Now(),
		Sensors:  sensors,
		Excluded: e.grouper.Rejections(),
	})
}

// updateHealth records component health after startup decisions are known.
func (e *Engine) updateHealth() {
	if e.health == nil {
		return
	}
	e.health.UpdateHealthy("engine", "running")
	e.health.UpdateHealthy("reader", "polling")
	if e.monitor.EventsActive() {
		e.health.UpdateHealthy("watcher", "events and timer")
	} else {
		e.health.UpdateDegraded("watcher", "timer-only fallback")
	}
}

// Stop shuts down the monitor with a bounded acknowledgement, then the tick
// loop. The current tick always completes; no reading is half-applied.
func (e *Engine) Stop(timeout time.Duration) error {
	if !e.running.Load() {
		return nil
	}
	e.running.Store(false)

	if err := e.monitor.Stop(timeout); err != nil {
		// Proceed with engine shutdown regardless; the monitor goroutine
		// can no longer affect the store.
		e.logger.Warn("change monitor did not acknowledge stop in time", "error", err)
	}

	e.mu.Lock()
	if e.shutdown != nil {
		select {
		case <-e.shutdown:
		default:
			close(e.shutdown)
		}
	}
	e.mu.Unlock()

	select {
	case <-e.done:
	case <-time.After(timeout):
		return errors.WrapTransient(fmt.Errorf("stop timeout after %v", timeout),
			"engine", "Stop", "graceful shutdown")
	}

	if e.health != nil {
		e.health.UpdateHealthy("engine", "stopped")
	}

	e.logger.Info("engine stopped")
	return nil
}
