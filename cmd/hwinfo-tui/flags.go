package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Debug           bool
	RefreshInterval time.Duration
	TimeWindow      time.Duration
	MetricsPort     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("HWINFO_CONFIG", ""),
		"Path to JSON configuration file (env: HWINFO_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("HWINFO_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: HWINFO_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("HWINFO_LOG_FORMAT", "text"),
		"Log format: json, text (env: HWINFO_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("HWINFO_DEBUG", false),
		"Enable debug mode (env: HWINFO_DEBUG)")

	flag.DurationVar(&cfg.RefreshInterval, "refresh",
		0, "Statistics refresh interval, 0.1s-60s (overrides config)")

	flag.DurationVar(&cfg.TimeWindow, "window",
		0, "Rolling statistics window, 10s-2h (overrides config)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("HWINFO_METRICS_PORT", 0),
		"Prometheus exporter port, 0 to disable (env: HWINFO_METRICS_PORT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("HWINFO_SHUTDOWN_TIMEOUT", 5*time.Second),
		"Graceful shutdown timeout (env: HWINFO_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printHelp() {
	printDetailedHelp()
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - HWiNFO sensor log ingestion engine

Usage: %s [options] <logfile> [sensor ...]

Arguments:
  logfile   Sensor CSV log file to tail
  sensor    Exact sensor column identities, e.g. "CPU Package [°C]";
            omit to track every column in the header

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Track every sensor in the log
  %s sensors.csv

  # Track two sensors with a 2 minute window
  %s --window=2m sensors.csv "CPU Package [°C]" "Total CPU Usage [%%]"

  # Run from a config file with the Prometheus exporter enabled
  %s --config=/etc/hwinfo/config.json --metrics-port=9090

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
