// Package shelltest provides an in-memory shell.Host for tests.
package shelltest

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/haskel/gpuprobe/internal/shell"
)

// Result is the canned outcome of one command line.
type Result struct {
	Out string
	Err error
}

// Host answers lookups from its maps. Commands are keyed by the full
// argument vector joined with single spaces.
type Host struct {
	Tools    map[string]bool
	Commands map[string]Result
	Env      map[string]string
	Files    map[string]string

	Calls []string
	// Timeouts records the time left before the context deadline at the
	// start of each Run, keyed by command line.
	Timeouts map[string]time.Duration
	// Panic, when set, panics on any Run of the named tool.
	Panic string
}

func New() *Host {
	return &Host{
		Tools:    map[string]bool{},
		Commands: map[string]Result{},
		Env:      map[string]string{},
		Files:    map[string]string{},
		Timeouts: map[string]time.Duration{},
	}
}

// Tool marks the named tools as resolvable.
func (h *Host) Tool(names ...string) *Host {
	for _, name := range names {
		h.Tools[name] = true
	}
	return h
}

// Command registers output for a command line and marks its tool resolvable.
func (h *Host) Command(line, out string) *Host {
	h.Commands[line] = Result{Out: out}
	h.Tools[strings.Fields(line)[0]] = true
	return h
}

// Fail registers an error for a command line and marks its tool resolvable.
func (h *Host) Fail(line string, err error) *Host {
	h.Commands[line] = Result{Err: err}
	h.Tools[strings.Fields(line)[0]] = true
	return h
}

// File registers file content.
func (h *Host) File(path, content string) *Host {
	h.Files[path] = content
	return h
}

func (h *Host) LookPath(name string) (string, error) {
	if h.Tools[name] {
		if filepath.IsAbs(name) {
			return name, nil
		}
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("%s: %w", name, shell.ErrToolUnavailable)
}

func (h *Host) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	h.Calls = append(h.Calls, line)
	if deadline, ok := ctx.Deadline(); ok {
		h.Timeouts[line] = time.Until(deadline)
	}
	if h.Panic != "" && h.Panic == name {
		panic("shelltest: " + line)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, shell.ErrTimeout)
	}
	res, ok := h.Commands[line]
	if !ok {
		if !h.Tools[name] {
			return nil, fmt.Errorf("%s: %w", name, shell.ErrToolUnavailable)
		}
		return nil, &shell.ExitError{Name: name, Err: fmt.Errorf("exit status 1")}
	}
	return []byte(res.Out), res.Err
}

func (h *Host) Getenv(key string) string {
	return h.Env[key]
}

func (h *Host) ReadFile(path string) ([]byte, error) {
	content, ok := h.Files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	return []byte(content), nil
}

func (h *Host) Exists(path string) bool {
	if _, ok := h.Files[path]; ok {
		return true
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	for name := range h.Files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (h *Host) Glob(pattern string) ([]string, error) {
	var matches []string
	for name := range h.Files {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// Ran reports whether any recorded call starts with the given command line.
func (h *Host) Ran(prefix string) bool {
	for _, call := range h.Calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}
