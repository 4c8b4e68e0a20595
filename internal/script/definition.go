// Package script describes runnable scripts and builds the commands that
// execute them.
package script

import (
	"fmt"
	"strings"
)

// Kind identifies the interpreter used to execute a script.
type Kind string

const (
	// KindPython runs the script with a Python interpreter resolved from PATH.
	KindPython Kind = "python"

	// KindBash runs the script with /bin/bash.
	KindBash Kind = "bash"

	// KindPowerShell runs the script with PowerShell Core (pwsh) if present.
	KindPowerShell Kind = "powershell"

	// KindExec executes the script file directly, relying on the kernel's
	// executable dispatch (shebang line).
	KindExec Kind = "exec"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindPython:
		return KindPython, nil
	case KindBash:
		return KindBash, nil
	case KindPowerShell:
		return KindPowerShell, nil
	case KindExec:
		return KindExec, nil
	default:
		return "", fmt.Errorf("unknown script kind %q", s)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPython, KindBash, KindPowerShell, KindExec:
		return true
	}
	return false
}

// Definition is an immutable description of a runnable script. The supervisor
// only reads it; ownership stays with the caller.
type Definition struct {
	// ID is the stable unique key distinguishing this script, independent
	// of its display name.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Kind selects the interpreter.
	Kind Kind `json:"kind"`

	// SourcePath is the path to the script file.
	SourcePath string `json:"source_path"`

	// Arguments is a whitespace-split argument string. No shell quoting is
	// supported.
	Arguments string `json:"arguments,omitempty"`

	// Environment overrides are overlaid on the parent environment.
	// An override wins on key collision.
	Environment map[string]string `json:"environment,omitempty"`

	// WorkingDir overrides the child working directory. Empty means the
	// script's own directory.
	WorkingDir string `json:"working_dir,omitempty"`

	// AutoStart marks the script for launch when the daemon starts.
	AutoStart bool `json:"auto_start,omitempty"`

	// Enabled gates the script; disabled scripts are never auto-started.
	Enabled bool `json:"enabled"`
}

// Validate checks that the definition is complete enough to run.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("script definition missing id")
	}
	if d.Name == "" {
		return fmt.Errorf("script %q: missing name", d.ID)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("script %q: unknown kind %q", d.ID, d.Kind)
	}
	if d.SourcePath == "" {
		return fmt.Errorf("script %q: missing source_path", d.ID)
	}
	return nil
}
