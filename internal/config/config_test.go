package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero grace", func(c *Config) { c.Grace = 0 }, "grace"},
		{"negative grace", func(c *Config) { c.Grace = -time.Second }, "grace"},
		{"zero buffer cap", func(c *Config) { c.BufferCap = 0 }, "buffer-cap"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"tui with verbose", func(c *Config) { c.TUIEnabled = true; c.Verbose = true }, "tui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
