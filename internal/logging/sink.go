package logging

import (
	"context"
	"log/slog"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// SlogSink forwards script output lines to a slog logger: stdout lines at
// info, stderr lines at warn, stream failures at error. Failures to log are
// invisible to the supervisor, which is the contract a sink must honor.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Write implements supervisor.LogSink.
func (s *SlogSink) Write(scriptID string, sev supervisor.Severity, line string) {
	s.logger.Log(context.Background(), slogLevel(sev), "script_output",
		"script_id", scriptID,
		"line", line,
	)
}

func slogLevel(sev supervisor.Severity) slog.Level {
	switch sev {
	case supervisor.SeverityDebug:
		return slog.LevelDebug
	case supervisor.SeverityWarn:
		return slog.LevelWarn
	case supervisor.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
