package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/neonlink/neonlink-scriptd/internal/script"
)

// DefaultGrace is the termination grace period used when a stop request does
// not specify one.
const DefaultGrace = 5 * time.Second

// Callbacks contains optional hooks for registry events. All callbacks are
// invoked synchronously and must be fast.
type Callbacks struct {
	// OnStart is called after a script process has started.
	OnStart func(rec RunRecord)

	// OnExit is called after a run reaches a terminal state.
	OnExit func(rec RunRecord, uptime time.Duration)

	// OnStateChange is called on every status transition.
	OnStateChange func(scriptID string, oldStatus, newStatus Status)

	// OnForceKill is called when a stop escalates to SIGKILL.
	OnForceKill func(scriptID string)
}

// Config holds configuration for creating a Registry.
type Config struct {
	Logger    *slog.Logger
	Sink      LogSink
	Callbacks Callbacks

	// BufferCap is the per-stream ring buffer capacity.
	// Defaults to DefaultBufferCap.
	BufferCap int

	// Grace is the default termination grace period.
	// Defaults to DefaultGrace.
	Grace time.Duration
}

// Registry is the externally visible supervisor service: it maps script
// identities to their current run and serializes start/stop/finalize per
// script while keeping different scripts fully independent.
type Registry struct {
	logger    *slog.Logger
	sink      LogSink
	callbacks Callbacks
	bufferCap int
	grace     time.Duration

	// mu guards the two maps only; per-run state is guarded by the
	// script's own lock so scripts never block each other.
	mu    sync.Mutex
	runs  map[string]*run
	locks map[string]*sync.Mutex

	shuttingDown atomic.Bool
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	// wg tracks pump goroutines for shutdown draining.
	wg sync.WaitGroup

	activeCount atomic.Int64
}

// New creates a Registry.
func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink()
	}
	bufferCap := cfg.BufferCap
	if bufferCap < 1 {
		bufferCap = DefaultBufferCap
	}
	grace := cfg.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}

	return &Registry{
		logger:     logger,
		sink:       sink,
		callbacks:  cfg.Callbacks,
		bufferCap:  bufferCap,
		grace:      grace,
		runs:       make(map[string]*run),
		locks:      make(map[string]*sync.Mutex),
		shutdownCh: make(chan struct{}),
	}
}

// lockFor returns the mutex serializing operations on one script identity.
// Locks are created lazily and kept for the registry's lifetime.
func (r *Registry) lockFor(scriptID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[scriptID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[scriptID] = l
	}
	return l
}

func (r *Registry) lookup(scriptID string) *run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[scriptID]
}

// Start launches a script process and begins pumping its output.
//
// It fails with ErrShutdown once shutdown has begun, ErrAlreadyRunning if a
// running record exists for the script identity, and a SpawnError if the
// operating system refuses to create the process. A finished record for the
// same script is replaced by the new run.
func (r *Registry) Start(ctx context.Context, def script.Definition, extraArgs, workingDir string) (RunRecord, error) {
	if r.shuttingDown.Load() {
		return RunRecord{}, ErrShutdown
	}
	if err := ctx.Err(); err != nil {
		return RunRecord{}, err
	}

	// The check below and the insert must be atomic per script identity,
	// or two racing starts could both pass the running check.
	lock := r.lockFor(def.ID)
	lock.Lock()
	defer lock.Unlock()

	if cur := r.lookup(def.ID); cur != nil && cur.status == StatusRunning {
		return RunRecord{}, ErrAlreadyRunning
	}

	spec := script.Build(def, extraArgs)
	cmd := exec.Command(spec.Path, spec.Args[1:]...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	if workingDir != "" {
		cmd.Dir = workingDir
	}
	// Own process group, so stop signals reach the script's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return RunRecord{}, &SpawnError{Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return RunRecord{}, &SpawnError{Err: err}
	}

	if err := cmd.Start(); err != nil {
		r.logger.Error("script_spawn_failed",
			"script_id", def.ID,
			"path", spec.Path,
			"error", err,
		)
		return RunRecord{}, &SpawnError{Err: err}
	}

	ru := &run{
		scriptID:  def.ID,
		runID:     uuid.NewString(),
		name:      def.Name,
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startTime: time.Now(),
		status:    StatusRunning,
		stdout:    NewRingBuffer(r.bufferCap),
		stderr:    NewRingBuffer(r.bufferCap),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	r.runs[def.ID] = ru
	r.mu.Unlock()
	r.activeCount.Add(1)

	r.wg.Add(1)
	p := &pump{reg: r, run: ru, stdout: stdout, stderr: stderr}
	go p.loop()

	r.logger.Info("script_started",
		"script_id", def.ID,
		"name", def.Name,
		"pid", ru.pid,
		"run_id", ru.runID,
	)

	rec := ru.snapshot()
	if r.callbacks.OnStateChange != nil {
		r.callbacks.OnStateChange(def.ID, StatusIdle, StatusRunning)
	}
	if r.callbacks.OnStart != nil {
		r.callbacks.OnStart(rec)
	}
	return rec, nil
}

// Stop requests termination of a running script: SIGTERM to the process
// group, a grace-period wait, then SIGKILL. It returns true iff a running
// record existed and the termination sequence was initiated; stopping an
// unknown or finished script returns false without side effects.
//
// Stop returns once the sequence is delivered; the terminal state transition
// itself is still owned by the pump.
func (r *Registry) Stop(scriptID string, grace time.Duration) bool {
	return r.stop(scriptID, grace, r.shutdownCh)
}

// stop implements Stop. The escalate channel aborts the grace wait early;
// callers already waiting when ShutdownAll begins kill immediately, while
// ShutdownAll's own sequential stops pass nil to keep their full grace.
func (r *Registry) stop(scriptID string, grace time.Duration, escalate <-chan struct{}) bool {
	if grace <= 0 {
		grace = r.grace
	}

	lock := r.lockFor(scriptID)
	lock.Lock()
	ru := r.lookup(scriptID)
	if ru == nil || ru.status != StatusRunning {
		lock.Unlock()
		return false
	}
	pid := ru.pid
	done := ru.done
	lock.Unlock()

	if err := signalGroup(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			// Process already gone; the pump will finalize.
			return true
		}
		r.logger.Error("termination_signal_failed",
			"script_id", scriptID,
			"pid", pid,
			"error", err,
		)
		return false
	}

	r.logger.Info("script_stop_requested",
		"script_id", scriptID,
		"pid", pid,
		"grace", grace.String(),
	)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
	case <-escalate:
	}

	r.logger.Warn("force_killing_process",
		"script_id", scriptID,
		"pid", pid,
	)
	if err := signalGroup(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		r.logger.Error("force_kill_failed",
			"script_id", scriptID,
			"pid", pid,
			"error", err,
		)
		return false
	}
	if r.callbacks.OnForceKill != nil {
		r.callbacks.OnForceKill(scriptID)
	}
	return true
}

// finalize records the terminal state of a run. Called only by the pump,
// after process exit and after all read output has been forwarded.
func (r *Registry) finalize(ru *run, exitCode int, readErr error) {
	lock := r.lockFor(ru.scriptID)
	lock.Lock()

	oldStatus := ru.status
	code := exitCode
	ru.exitCode = &code
	if exitCode == 0 && readErr == nil {
		ru.status = StatusStopped
	} else {
		ru.status = StatusErrored
	}
	newStatus := ru.status
	rec := ru.snapshot()
	lock.Unlock()

	close(ru.done)
	r.activeCount.Add(-1)

	uptime := time.Since(ru.startTime)
	r.logger.Info("script_exited",
		"script_id", ru.scriptID,
		"pid", ru.pid,
		"exit_code", exitCode,
		"status", newStatus.String(),
		"uptime", uptime.String(),
	)

	if r.callbacks.OnStateChange != nil {
		r.callbacks.OnStateChange(ru.scriptID, oldStatus, newStatus)
	}
	if r.callbacks.OnExit != nil {
		r.callbacks.OnExit(rec, uptime)
	}
}

// Get returns a snapshot of the script's current run record, if one exists.
// A finished run stays queryable until Remove or ShutdownAll.
func (r *Registry) Get(scriptID string) (RunRecord, bool) {
	lock := r.lockFor(scriptID)
	lock.Lock()
	defer lock.Unlock()

	ru := r.lookup(scriptID)
	if ru == nil {
		return RunRecord{}, false
	}
	return ru.snapshot(), true
}

// List returns snapshots of all run records, ordered by script identity.
func (r *Registry) List() []RunRecord {
	r.mu.Lock()
	ids := make([]string, 0, len(r.runs))
	for id := range r.runs {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	records := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.Get(id); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Remove deletes a finished run record. It returns false if the script is
// unknown or still running.
func (r *Registry) Remove(scriptID string) bool {
	lock := r.lockFor(scriptID)
	lock.Lock()
	defer lock.Unlock()

	ru := r.lookup(scriptID)
	if ru == nil || ru.status == StatusRunning {
		return false
	}

	r.mu.Lock()
	delete(r.runs, scriptID)
	r.mu.Unlock()
	return true
}

// ActiveCount returns the number of currently running scripts.
func (r *Registry) ActiveCount() int {
	return int(r.activeCount.Load())
}

// ShutdownAll stops every running script sequentially with the given grace
// period, rejecting new starts from the moment it is called, then waits for
// all pumps to drain (bounded by ctx) and clears the run table.
func (r *Registry) ShutdownAll(ctx context.Context, grace time.Duration) error {
	r.shuttingDown.Store(true)
	r.shutdownOnce.Do(func() { close(r.shutdownCh) })

	r.logger.Info("shutdown_initiated", "active_scripts", r.ActiveCount())

	r.mu.Lock()
	ids := make([]string, 0, len(r.runs))
	for id := range r.runs {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	for _, id := range ids {
		r.stop(id, grace, nil)
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("shutdown_timeout")
		return ctx.Err()
	}

	r.mu.Lock()
	r.runs = make(map[string]*run)
	r.mu.Unlock()

	r.logger.Info("all_scripts_stopped")
	return nil
}

// signalGroup delivers a signal to the process group, falling back to the
// process itself if the group cannot be resolved.
func signalGroup(pid int, sig syscall.Signal) error {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		return syscall.Kill(-pgid, sig)
	}
	return syscall.Kill(pid, sig)
}
