// Package main provides the neonlink-scriptd CLI entry point.
//
// neonlink-scriptd is the headless script supervisor behind the NeonLink
// control center: it launches interpreter scripts, streams their output,
// tracks per-run state and guarantees clean shutdown.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/neonlink/neonlink-scriptd/internal/config"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/neonlink-scriptd
var version = "dev"

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:          "neonlink-scriptd",
	Short:        "Supervise NeonLink scripts: launch, stream output, stop cleanly",
	SilenceUsage: true,
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DefinitionsPath, "definitions", cfg.DefinitionsPath, "path to the script definitions JSON file")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: json or text")
	pf.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "verbose logging")

	rf := runCmd.Flags()
	rf.DurationVar(&cfg.Grace, "grace", cfg.Grace, "termination grace period before SIGKILL")
	rf.IntVar(&cfg.BufferCap, "buffer-cap", cfg.BufferCap, "per-stream output lines kept per run")
	rf.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "prometheus listen address (empty = disabled)")
	rf.BoolVar(&cfg.StatsEnabled, "stats", cfg.StatsEnabled, "report run duration stats at shutdown")
	rf.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "show the live run-table dashboard")

	inf := installCmd.Flags()
	inf.StringVar(&flagInstallMethod, "method", flagInstallMethod, "install method: copy, symlink or path")
	inf.StringVar(&cfg.InstallDir, "target", cfg.InstallDir, "install directory (default ~/.local/bin)")

	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("neonlink-scriptd failed", "err", err)
		os.Exit(1)
	}
}
