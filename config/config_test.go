package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Path = "/var/log/sensors.csv"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Second, cfg.RefreshInterval)
	assert.Equal(t, 60*time.Second, cfg.TimeWindow)
	assert.Equal(t, 3600, cfg.Capacity)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, []string{"utf-8-sig", "utf-8", "windows-1252", "latin-1"}, cfg.Encodings)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing path", func(c *Config) { c.Path = "" }, "path is required"},
		{"refresh too fast", func(c *Config) { c.RefreshInterval = 50 * time.Millisecond }, "refresh_interval"},
		{"refresh too slow", func(c *Config) { c.RefreshInterval = 2 * time.Minute }, "refresh_interval"},
		{"window too small", func(c *Config) { c.TimeWindow = time.Second }, "time_window"},
		{"window too large", func(c *Config) { c.TimeWindow = 3 * time.Hour }, "time_window"},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "capacity"},
		{"negative poll", func(c *Config) { c.PollInterval = -time.Second }, "poll_interval"},
		{"no encodings", func(c *Config) { c.Encodings = nil }, "encodings"},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 70000 }, "metrics.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"path": "/logs/hwinfo.csv",
		"sensors": ["CPU Package [°C]", "Total CPU Usage [%]"],
		"refresh_interval": "2s",
		"time_window": 120,
		"capacity": 1800
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/logs/hwinfo.csv", cfg.Path)
	assert.Len(t, cfg.Sensors, 2)
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 2*time.Minute, cfg.TimeWindow)
	assert.Equal(t, 1800, cfg.Capacity)
	// Unset fields keep defaults
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"path": "x", "refresh_interval": "fast"}`), 0o644))

	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HWINFO_PATH", "/from/env.csv")
	t.Setenv("HWINFO_REFRESH_INTERVAL", "250ms")
	t.Setenv("HWINFO_SENSORS", "A [°C],B [%]")
	t.Setenv("HWINFO_CAPACITY", "100")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "/from/env.csv", cfg.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, []string{"A [°C]", "B [%]"}, cfg.Sensors)
	assert.Equal(t, 100, cfg.Capacity)
}

func TestLoadMissingPathFails(t *testing.T) {
	// No file layer, no env: Path is empty and validation must reject it.
	_, err := NewLoader().Load("")
	assert.Error(t, err)
}
