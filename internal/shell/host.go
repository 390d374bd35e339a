// Package shell wraps the host facilities the detectors consume: executable
// lookup, bounded subprocess execution, environment and filesystem reads.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

var (
	// ErrToolUnavailable means the executable could not be resolved.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrTimeout means a bounded call exceeded its allotted time.
	ErrTimeout = errors.New("timeout exceeded")
)

// Host is the set of machine facilities detection depends on.
type Host interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	Getenv(key string) string
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
	Glob(pattern string) ([]string, error)
}

// Probe reports whether the named tool is invocable. It never runs the tool.
func Probe(h Host, name string) bool {
	if name == "" {
		return false
	}
	_, err := h.LookPath(name)
	return err == nil
}

// Local is the Host backed by the running machine.
type Local struct {
	// Env is appended to the inherited environment of every subprocess.
	Env []string
}

func NewLocal() *Local {
	// Tool output is parsed; keep it in the C locale.
	return &Local{Env: []string{"LC_ALL=C"}}
}

func (l *Local) LookPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		info, err := os.Stat(name)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("%s: %w", name, ErrToolUnavailable)
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}
	return path, nil
}

func (l *Local) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), l.Env...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return stdout.Bytes(), fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, ctxErr)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
		}
		return stdout.Bytes(), &ExitError{Name: name, Err: err, Stderr: stderr.String()}
	}
	return stdout.Bytes(), nil
}

func (l *Local) Getenv(key string) string {
	return os.Getenv(key)
}

func (l *Local) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *Local) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (l *Local) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// ExitError is returned when a tool ran but failed.
type ExitError struct {
	Name   string
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
