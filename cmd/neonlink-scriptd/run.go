package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neonlink/neonlink-scriptd/internal/config"
	"github.com/neonlink/neonlink-scriptd/internal/logging"
	"github.com/neonlink/neonlink-scriptd/internal/metrics"
	"github.com/neonlink/neonlink-scriptd/internal/script"
	"github.com/neonlink/neonlink-scriptd/internal/stats"
	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
	"github.com/neonlink/neonlink-scriptd/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run [script-id ...]",
	Short: "Start auto-start scripts (plus any named ones) and supervise them until exit",
	RunE:  doRun,
}

func doRun(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// The TUI owns the terminal, so logs are discarded while it runs.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	defs, err := script.LoadDefinitions(cfg.DefinitionsPath)
	if err != nil {
		return err
	}
	byID := make(map[string]script.Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}

	collector := metrics.NewCollector()
	runStats := stats.New()

	callbacks := []supervisor.Callbacks{collector.Callbacks()}
	if cfg.StatsEnabled {
		callbacks = append(callbacks, runStats.Callbacks())
	}

	reg := supervisor.New(supervisor.Config{
		Logger:    logger,
		Sink:      collector.InstrumentSink(logging.NewSlogSink(logger)),
		Callbacks: supervisor.MergeCallbacks(callbacks...),
		BufferCap: cfg.BufferCap,
		Grace:     cfg.Grace,
	})

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, collector, logger)
		metricsServer.Start()
	}

	logger.Info("starting",
		"version", version,
		"definitions", cfg.DefinitionsPath,
		"scripts", len(defs),
		"grace", cfg.Grace.String(),
		"metrics_addr", cfg.MetricsAddr,
	)

	ctx := cmd.Context()
	if err := startScripts(ctx, reg, collector, logger, defs, byID, args); err != nil {
		return err
	}

	if cfg.TUIEnabled {
		program := tea.NewProgram(tui.New(reg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			logger.Error("tui_failed", "error", err)
		}
	} else {
		waitCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		<-waitCtx.Done()
		stop()
	}

	// Sequential stops: bound the total drain by grace per running script
	// plus slack for pump finalization.
	budget := cfg.Grace*time.Duration(reg.ActiveCount()+1) + 2*time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	if err := reg.ShutdownAll(shutdownCtx, cfg.Grace); err != nil {
		logger.Error("shutdown_incomplete", "error", err)
	}

	if metricsServer != nil {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelStop()
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("metrics_server_shutdown_failed", "error", err)
		}
	}

	if cfg.StatsEnabled {
		sum := runStats.Snapshot()
		logger.Info("run_stats",
			"runs", sum.Count,
			"stopped", sum.Stopped,
			"errored", sum.Errored,
			"mean", sum.Mean.String(),
			"p50", sum.P50.String(),
			"p95", sum.P95.String(),
			"p99", sum.P99.String(),
			"max", sum.Max.String(),
		)
	}
	return nil
}

// startScripts launches every enabled auto-start script plus the IDs named
// on the command line. A spawn failure is reported and skipped; other
// scripts still start.
func startScripts(ctx context.Context, reg *supervisor.Registry, collector *metrics.Collector, logger *slog.Logger, defs []script.Definition, byID map[string]script.Definition, named []string) error {
	selected := make([]script.Definition, 0, len(defs))
	seen := make(map[string]bool)
	for _, d := range defs {
		if d.Enabled && d.AutoStart {
			selected = append(selected, d)
			seen[d.ID] = true
		}
	}
	for _, id := range named {
		d, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown script id %q", id)
		}
		if !seen[id] {
			selected = append(selected, d)
		}
	}

	for _, d := range selected {
		if _, err := reg.Start(ctx, d, "", ""); err != nil {
			var spawnErr *supervisor.SpawnError
			if errors.As(err, &spawnErr) {
				collector.RecordSpawnFailure()
			}
			logger.Error("script_start_failed",
				"script_id", d.ID,
				"kind", supervisor.Describe(supervisor.KindOf(err)),
				"error", err,
			)
		}
	}
	return nil
}
