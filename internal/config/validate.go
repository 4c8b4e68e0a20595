package config

import "fmt"

// Validate checks the configuration for inconsistent or out-of-range values.
func Validate(cfg *Config) error {
	if cfg.Grace <= 0 {
		return fmt.Errorf("grace must be positive, got %s", cfg.Grace)
	}
	if cfg.BufferCap < 1 {
		return fmt.Errorf("buffer-cap must be at least 1, got %d", cfg.BufferCap)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log-format must be json or text, got %q", cfg.LogFormat)
	}
	if cfg.TUIEnabled && cfg.Verbose {
		return fmt.Errorf("tui and verbose logging cannot be combined")
	}
	return nil
}
