// Package main implements the entry point for the hwinfo-tui engine: it
// tails a HWiNFO-style CSV sensor log, maintains rolling windowed statistics
// for the selected sensors, and optionally exposes them over Prometheus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/JuanjoFuchs/hwinfo-tui/config"
	"github.com/JuanjoFuchs/hwinfo-tui/engine"
	"github.com/JuanjoFuchs/hwinfo-tui/health"
	"github.com/JuanjoFuchs/hwinfo-tui/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "hwinfo-tui"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	monitor := health.NewMonitor()
	registry := metric.NewMetricsRegistry()

	eng := engine.New(engine.Deps{
		Config:   *cfg,
		Logger:   slog.Default().With("component", "engine"),
		Registry: registry,
		Health:   monitor,
	})

	if err := eng.Initialize(); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry, monitor)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		slog.Info("Metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	return runWithSignalHandling(eng, metricsServer, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting hwinfo-tui (sensor log ingestion)",
		"version", Version,
		"build_time", BuildTime)

	return cliCfg, false, nil
}

// loadConfig builds the engine configuration from the file/env layers and
// the command line. Positional arguments name the log file and the sensors
// and take precedence over both layers.
func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	var cfg *config.Config

	args := flag.Args()
	if len(args) > 0 {
		c := config.Default()
		if cliCfg.ConfigPath != "" {
			loaded, err := config.NewLoader().Load(cliCfg.ConfigPath)
			if err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
			c = *loaded
		}
		c.Path = args[0]
		c.Sensors = args[1:]
		cfg = &c
	} else {
		loaded, err := config.NewLoader().Load(cliCfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	// Flag overrides beat every other layer.
	if cliCfg.RefreshInterval > 0 {
		cfg.RefreshInterval = cliCfg.RefreshInterval
	}
	if cliCfg.TimeWindow > 0 {
		cfg.TimeWindow = cliCfg.TimeWindow
	}
	if cliCfg.MetricsPort > 0 {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = cliCfg.MetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// runWithSignalHandling starts the engine and blocks until a shutdown signal
func runWithSignalHandling(eng *engine.Engine, metricsServer *metric.Server, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := eng.Start(signalCtx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	slog.Info("hwinfo-tui started, tailing log")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	var firstErr error
	if err := eng.Stop(shutdownTimeout); err != nil {
		firstErr = fmt.Errorf("stop engine: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownTimeout); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop metrics server: %w", err)
		}
	}
	if firstErr != nil {
		return firstErr
	}

	slog.Info("hwinfo-tui shutdown complete")
	return nil
}
