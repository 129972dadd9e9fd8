// Package config holds the explicit configuration value consumed by the
// engine. Configuration is loaded once (defaults, optional JSON file layer,
// environment overrides) and passed into each component at construction; no
// component reads global state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Bounds enforced by Validate. The refresh interval paces the orchestrator
// tick; the time window bounds the rolling statistics horizon.
const (
	MinRefreshInterval = 100 * time.Millisecond
	MaxRefreshInterval = 60 * time.Second
	MinTimeWindow      = 10 * time.Second
	MaxTimeWindow      = 2 * time.Hour
)

// Config represents the complete engine configuration
type Config struct {
	// Path is the sensor log file to tail.
	Path string `json:"path"`

	// Sensors lists requested column identities (exact header names, e.g.
	// "CPU Package [°C]"). Empty means every sensor column in the header.
	Sensors []string `json:"sensors,omitempty"`

	// RefreshInterval paces the orchestrator tick (0.1s-60s).
	RefreshInterval time.Duration `json:"refresh_interval,omitempty"`

	// TimeWindow is the rolling statistics horizon (10s-7200s).
	TimeWindow time.Duration `json:"time_window,omitempty"`

	// Capacity is the fixed per-sensor ring buffer size in samples,
	// independent of TimeWindow.
	Capacity int `json:"capacity,omitempty"`

	// PollInterval paces the timer half of the file change monitor.
	PollInterval time.Duration `json:"poll_interval,omitempty"`

	// StopTimeout bounds how long shutdown waits for each signal source
	// to acknowledge before proceeding anyway.
	StopTimeout time.Duration `json:"stop_timeout,omitempty"`

	// Encodings is the ordered candidate list for header decoding.
	// Recognized names: utf-8-sig, utf-8, windows-1252, latin-1.
	Encodings []string `json:"encodings,omitempty"`

	// Metrics configures the Prometheus exporter.
	Metrics MetricsConfig `json:"metrics,omitempty"`
}

// MetricsConfig defines the metrics HTTP exporter settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Default returns the default configuration. Path and Sensors have no
// defaults; they come from the file layer, environment, or caller.
func Default() Config {
	return Config{
		RefreshInterval: time.Second,
		TimeWindow:      60 * time.Second,
		Capacity:        3600,
		PollInterval:    500 * time.Millisecond,
		StopTimeout:     5 * time.Second,
		Encodings:       []string{"utf-8-sig", "utf-8", "windows-1252", "latin-1"},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}

	if c.RefreshInterval < MinRefreshInterval || c.RefreshInterval > MaxRefreshInterval {
		return fmt.Errorf("refresh_interval %s out of range [%s, %s]",
			c.RefreshInterval, MinRefreshInterval, MaxRefreshInterval)
	}

	if c.TimeWindow < MinTimeWindow || c.TimeWindow > MaxTimeWindow {
		return fmt.Errorf("time_window %s out of range [%s, %s]",
			c.TimeWindow, MinTimeWindow, MaxTimeWindow)
	}

	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}

	if c.StopTimeout <= 0 {
		return fmt.Errorf("stop_timeout must be positive, got %s", c.StopTimeout)
	}

	if len(c.Encodings) == 0 {
		return errors.New("encodings list cannot be empty")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
		}
	}

	return nil
}

// UnmarshalJSON accepts duration fields either as Go duration strings
// ("500ms", "2s") or as plain seconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		RefreshInterval any `json:"refresh_interval,omitempty"`
		TimeWindow      any `json:"time_window,omitempty"`
		PollInterval    any `json:"poll_interval,omitempty"`
		StopTimeout     any `json:"stop_timeout,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		raw any
		dst *time.Duration
	}{
		{aux.RefreshInterval, &c.RefreshInterval},
		{aux.TimeWindow, &c.TimeWindow},
		{aux.PollInterval, &c.PollInterval},
		{aux.StopTimeout, &c.StopTimeout},
	}
	for _, f := range fields {
		d, ok, err := parseDurationField(f.raw)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = d
		}
	}

	return nil
}

// parseDurationField converts a raw JSON value into a duration. Strings use
// time.ParseDuration; bare numbers are interpreted as seconds.
func parseDurationField(raw any) (time.Duration, bool, error) {
	switch v := raw.(type) {
	case nil:
		return 0, false, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, true, nil
	case float64:
		return time.Duration(v * float64(time.Second)), true, nil
	default:
		return 0, false, fmt.Errorf("invalid duration value %v", raw)
	}
}

// Loader handles configuration loading with an optional file layer and
// environment overrides
type Loader struct {
	envPrefix string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{envPrefix: "HWINFO"}
}

// Load builds a configuration from defaults, an optional JSON file layer,
// and environment overrides, then validates it.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	l.applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_PATH"); val != "" {
		cfg.Path = val
	}
	if val := os.Getenv(l.envPrefix + "_SENSORS"); val != "" {
		cfg.Sensors = strings.Split(val, ",")
	}
	if val := os.Getenv(l.envPrefix + "_REFRESH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RefreshInterval = d
		}
	}
	if val := os.Getenv(l.envPrefix + "_TIME_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.TimeWindow = d
		}
	}
	if val := os.Getenv(l.envPrefix + "_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Capacity = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Enabled = true
			cfg.Metrics.Port = n
		}
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
