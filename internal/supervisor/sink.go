package supervisor

// Severity classifies a forwarded output line.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// LogSink receives script output lines as they are pumped. Implementations
// must be safe for concurrent use and best-effort: a sink failure must never
// abort script execution, so Write returns nothing.
//
// Pumped stdout lines arrive as SeverityInfo and stderr lines as
// SeverityWarn; SeverityError is reserved for stream read failures.
type LogSink interface {
	Write(scriptID string, sev Severity, line string)
}

type nopSink struct{}

func (nopSink) Write(string, Severity, string) {}

// NopSink returns a sink that discards everything.
func NopSink() LogSink {
	return nopSink{}
}
