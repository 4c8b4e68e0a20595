// Package supervisor owns the script run table: it spawns script processes,
// pumps their output, and drives each run to a terminal state.
package supervisor

// Status represents the lifecycle state of a script run.
type Status int

const (
	// StatusIdle means no run exists for the script.
	StatusIdle Status = iota

	// StatusRunning means the child process is alive and its output is
	// being pumped.
	StatusRunning

	// StatusStopped means the process exited cleanly with code 0.
	StatusStopped

	// StatusErrored means the process exited nonzero, was killed, failed to
	// launch, or its output streams failed mid-run.
	StatusErrored
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsTerminal returns true once the run has finished and its exit code and
// buffers are final.
func (s Status) IsTerminal() bool {
	return s == StatusStopped || s == StatusErrored
}
