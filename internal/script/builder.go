package script

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Command is the exact spawn specification for one script run:
// argv, environment and working directory.
type Command struct {
	// Path is the executable to spawn (argv[0]).
	Path string

	// Args is the full argv, including Path as the first element.
	Args []string

	// Env is the child environment in KEY=VALUE form.
	Env []string

	// Dir is the child working directory.
	Dir string
}

// Build produces the command for a definition plus extra caller arguments.
// It is a pure function of its inputs and never fails: unresolvable
// interpreter binaries fall back to a conventional name and surface as a
// spawn error at start time instead.
func Build(def Definition, extraArgs string) Command {
	var argv []string
	switch def.Kind {
	case KindPython:
		argv = []string{pythonExecutable(), def.SourcePath}
	case KindBash:
		argv = []string{"/bin/bash", def.SourcePath}
	case KindPowerShell:
		argv = []string{powershellExecutable(), "-File", def.SourcePath}
	default:
		argv = []string{def.SourcePath}
	}
	argv = append(argv, strings.Fields(def.Arguments)...)
	argv = append(argv, strings.Fields(extraArgs)...)

	dir := def.WorkingDir
	if dir == "" {
		dir = filepath.Dir(def.SourcePath)
	}

	return Command{
		Path: argv[0],
		Args: argv,
		Env:  overlayEnv(os.Environ(), def.Environment),
		Dir:  dir,
	}
}

// pythonExecutable resolves the Python interpreter from PATH,
// preferring python3.
func pythonExecutable() string {
	if p, err := exec.LookPath("python3"); err == nil {
		return p
	}
	if p, err := exec.LookPath("python"); err == nil {
		return p
	}
	return "python3"
}

// powershellExecutable resolves PowerShell Core from PATH, falling back to
// the Windows PowerShell name.
func powershellExecutable() string {
	if p, err := exec.LookPath("pwsh"); err == nil {
		return p
	}
	return "powershell"
}

// overlayEnv applies overrides to a KEY=VALUE environment list.
// Existing keys are replaced in place; new keys are appended in sorted order
// so the result is deterministic.
func overlayEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	remaining := make(map[string]string, len(overrides))
	for k, v := range overrides {
		remaining[k] = v
	}

	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if v, hit := remaining[key]; hit {
				env = append(env, key+"="+v)
				delete(remaining, key)
				continue
			}
		}
		env = append(env, kv)
	}

	added := make([]string, 0, len(remaining))
	for k, v := range remaining {
		added = append(added, k+"="+v)
	}
	sort.Strings(added)
	return append(env, added...)
}
