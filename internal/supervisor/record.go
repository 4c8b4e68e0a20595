package supervisor

import (
	"os/exec"
	"time"
)

// run is the live, mutable state of one execution attempt. The status and
// exit code fields are guarded by the registry's per-script lock; the ring
// buffers guard themselves.
type run struct {
	scriptID  string
	runID     string
	name      string
	cmd       *exec.Cmd
	pid       int
	startTime time.Time

	status   Status
	exitCode *int

	stdout *RingBuffer
	stderr *RingBuffer

	// done is closed exactly once, when the run reaches a terminal state.
	done chan struct{}
}

// RunRecord is a point-in-time snapshot of a run. The pump may keep mutating
// the underlying run after the snapshot is taken; callers that need current
// state must re-query the registry.
type RunRecord struct {
	ScriptID  string
	RunID     string
	Name      string
	Status    Status
	PID       int
	StartTime time.Time

	// ExitCode is set iff Status is terminal.
	ExitCode *int

	Stdout []string
	Stderr []string
}

// Uptime returns the wall-clock duration since the run started.
func (r RunRecord) Uptime() time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}
	return time.Since(r.StartTime)
}

// snapshot copies the run into a RunRecord. Callers must hold the script's
// per-script lock so status and exit code are read consistently.
func (r *run) snapshot() RunRecord {
	rec := RunRecord{
		ScriptID:  r.scriptID,
		RunID:     r.runID,
		Name:      r.name,
		Status:    r.status,
		PID:       r.pid,
		StartTime: r.startTime,
		Stdout:    r.stdout.Lines(),
		Stderr:    r.stderr.Lines(),
	}
	if r.exitCode != nil {
		code := *r.exitCode
		rec.ExitCode = &code
	}
	return rec
}
