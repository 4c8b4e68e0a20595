package supervisor

import "errors"

// ErrAlreadyRunning is returned by Start when the script already has a
// running record. The caller decides whether to stop and restart.
var ErrAlreadyRunning = errors.New("script is already running")

// ErrShutdown is returned by Start once ShutdownAll has begun.
var ErrShutdown = errors.New("supervisor is shutting down")

// SpawnError wraps an operating-system refusal to create the child process
// (missing interpreter, permission denied, invalid path). No run record is
// created when Start returns it.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return "spawning script process: " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ErrorKind is the closed set of failure classes the supervisor reports.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAlreadyRunning
	KindSpawnFailed
	KindShutdown
)

// errorMessages maps each kind to its operator-facing description.
var errorMessages = map[ErrorKind]string{
	KindUnknown:        "unexpected supervisor error",
	KindAlreadyRunning: "an instance of this script is already running; stop it first",
	KindSpawnFailed:    "the script process could not be started",
	KindShutdown:       "the supervisor is shutting down and rejects new starts",
}

// KindOf classifies an error returned by the registry.
func KindOf(err error) ErrorKind {
	var spawnErr *SpawnError
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return KindAlreadyRunning
	case errors.Is(err, ErrShutdown):
		return KindShutdown
	case errors.As(err, &spawnErr):
		return KindSpawnFailed
	default:
		return KindUnknown
	}
}

// Describe returns the operator-facing message for a kind.
func Describe(kind ErrorKind) string {
	if msg, ok := errorMessages[kind]; ok {
		return msg
	}
	return errorMessages[KindUnknown]
}
