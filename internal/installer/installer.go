// Package installer places scripts in a fixed location so they can be run
// from PATH: by copying, symlinking, or extending this process's PATH.
package installer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/neonlink/neonlink-scriptd/internal/script"
)

// Method selects an installation strategy.
type Method string

const (
	// MethodCopy copies the script file into the install directory.
	MethodCopy Method = "copy"

	// MethodSymlink links the install directory entry to the source file.
	MethodSymlink Method = "symlink"

	// MethodPath prepends the script's directory to this process's PATH.
	// Children spawned by this supervisor resolve the script afterwards;
	// the change does not persist outside the process.
	MethodPath Method = "path"
)

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case MethodCopy:
		return MethodCopy, nil
	case MethodSymlink:
		return MethodSymlink, nil
	case MethodPath:
		return MethodPath, nil
	default:
		return "", fmt.Errorf("unknown install method %q", s)
	}
}

// InstallError wraps a failed installation attempt.
type InstallError struct {
	Method Method
	Err    error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing with method %s: %v", e.Method, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Installer installs script files into a target directory.
type Installer struct {
	dir    string
	logger *slog.Logger
}

// New creates an Installer targeting dir. An empty dir means ~/.local/bin.
func New(dir string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{dir: dir, logger: logger}
}

// Install places the script according to method and returns the path the
// script is reachable at afterwards.
func (i *Installer) Install(def script.Definition, method Method) (string, error) {
	target, err := i.targetDir()
	if err != nil {
		return "", &InstallError{Method: method, Err: err}
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", &InstallError{Method: method, Err: err}
	}

	var installed string
	switch method {
	case MethodCopy:
		installed, err = i.copyScript(def, target)
	case MethodSymlink:
		installed, err = i.symlinkScript(def, target)
	case MethodPath:
		installed, err = i.addToPath(def)
	default:
		err = fmt.Errorf("unknown install method %q", method)
	}
	if err != nil {
		return "", &InstallError{Method: method, Err: err}
	}

	i.logger.Info("script_installed",
		"script_id", def.ID,
		"method", string(method),
		"path", installed,
	)
	return installed, nil
}

// Uninstall removes a previously installed script.
func (i *Installer) Uninstall(def script.Definition, method Method, installedPath string) error {
	switch method {
	case MethodCopy:
		if err := os.Remove(installedPath); err != nil && !os.IsNotExist(err) {
			return &InstallError{Method: method, Err: err}
		}
	case MethodSymlink:
		if fi, err := os.Lstat(installedPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(installedPath); err != nil {
				return &InstallError{Method: method, Err: err}
			}
		}
	case MethodPath:
		i.removeFromPath(def)
	}

	i.logger.Info("script_uninstalled",
		"script_id", def.ID,
		"method", string(method),
	)
	return nil
}

func (i *Installer) targetDir() (string, error) {
	if i.dir != "" {
		return i.dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "bin"), nil
}

func (i *Installer) copyScript(def script.Definition, target string) (string, error) {
	dst := filepath.Join(target, filepath.Base(def.SourcePath))

	src, err := os.Open(def.SourcePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

func (i *Installer) symlinkScript(def script.Definition, target string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(def.SourcePath), filepath.Ext(def.SourcePath))
	if name == "" {
		name = strings.ReplaceAll(def.Name, " ", "_")
	}
	link := filepath.Join(target, name)

	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return "", err
	}

	abs, err := filepath.Abs(def.SourcePath)
	if err != nil {
		return "", err
	}
	if err := os.Symlink(abs, link); err != nil {
		return "", err
	}
	return link, nil
}

func (i *Installer) addToPath(def script.Definition) (string, error) {
	dir := filepath.Dir(def.SourcePath)
	path := os.Getenv("PATH")
	for _, entry := range filepath.SplitList(path) {
		if entry == dir {
			return def.SourcePath, nil
		}
	}
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+path); err != nil {
		return "", err
	}
	return def.SourcePath, nil
}

func (i *Installer) removeFromPath(def script.Definition) {
	dir := filepath.Dir(def.SourcePath)
	entries := filepath.SplitList(os.Getenv("PATH"))
	kept := entries[:0]
	for _, entry := range entries {
		if entry != dir {
			kept = append(kept, entry)
		}
	}
	os.Setenv("PATH", strings.Join(kept, string(os.PathListSeparator)))
}
