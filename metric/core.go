package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the core ingestion metrics shared across the pipeline
type Metrics struct {
	// Reader metrics
	RowsParsed       prometheus.Counter
	ParseErrors      *prometheus.CounterVec
	ReadingsAppended prometheus.Counter
	BytesRead        prometheus.Counter

	// Orchestrator metrics
	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram

	// Store metrics
	SensorsTracked prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RowsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hwinfo",
				Subsystem: "reader",
				Name:      "rows_parsed_total",
				Help:      "Total number of fully terminated rows parsed",
			},
		),

		ParseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hwinfo",
				Subsystem: "reader",
				Name:      "parse_errors_total",
				Help:      "Total number of rows skipped due to parse errors",
			},
			[]string{"reason"},
		),

		ReadingsAppended: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hwinfo",
				Subsystem: "reader",
				Name:      "readings_appended_total",
				Help:      "Total number of readings appended to sensor buffers",
			},
		),

		BytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hwinfo",
				Subsystem: "reader",
				Name:      "bytes_read_total",
				Help:      "Total bytes consumed from the log file",
			},
		),

		TicksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hwinfo",
				Subsystem: "engine",
				Name:      "ticks_total",
				Help:      "Total orchestrator ticks executed",
			},
		),

		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "hwinfo",
				Subsystem: "engine",
				Name:      "tick_duration_seconds",
				Help:      "Orchestrator tick duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),

		SensorsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hwinfo",
				Subsystem: "store",
				Name:      "sensors_tracked",
				Help:      "Number of sensors with buffered readings",
			},
		),
	}
}
