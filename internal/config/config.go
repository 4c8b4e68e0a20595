// Package config provides configuration management for neonlink-scriptd.
package config

import "time"

// Config holds all configuration options for the daemon.
type Config struct {
	// Scripts
	DefinitionsPath string `json:"definitions_path"`

	// Supervision
	Grace     time.Duration `json:"grace"`
	BufferCap int           `json:"buffer_cap"`

	// Install
	InstallDir string `json:"install_dir"` // empty = ~/.local/bin

	// Observability
	MetricsAddr  string `json:"metrics_addr"` // empty = disabled
	StatsEnabled bool   `json:"stats_enabled"`
	Verbose      bool   `json:"verbose"`
	LogFormat    string `json:"log_format"` // json, text

	// Terminal dashboard
	TUIEnabled bool `json:"tui_enabled"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DefinitionsPath: "scripts.json",

		Grace:     5 * time.Second,
		BufferCap: 1000,

		MetricsAddr:  "",
		StatsEnabled: true,
		Verbose:      false,
		LogFormat:    "json",

		TUIEnabled: false,
	}
}
