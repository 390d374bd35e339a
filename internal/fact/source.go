package fact

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoValue is returned by function sources that ran but had nothing to
// report. The resolver records it as a ParseMiss.
var ErrNoValue = errors.New("no value")

type sourceKind int

const (
	sourceCommand sourceKind = iota
	sourceFile
	sourceEnv
	sourceFunc
)

// Source is one concrete way to obtain raw text for a Fact, paired with the
// rule that extracts the value from it.
type Source struct {
	Name string

	kind    sourceKind
	args    []string
	path    string
	env     string
	fn      func(ctx context.Context) (string, error)
	timeout time.Duration
	rule    Rule
}

// Command runs an external tool. args[0] is the executable.
func Command(args ...string) Source {
	return Source{
		Name: strings.Join(args, " "),
		kind: sourceCommand,
		args: args,
		rule: Line(),
	}
}

// File reads a file.
func File(path string) Source {
	return Source{Name: path, kind: sourceFile, path: path, rule: Line()}
}

// Env reads an environment variable.
func Env(key string) Source {
	return Source{Name: "$" + key, kind: sourceEnv, env: key, rule: Line()}
}

// Func calls fn. Library-backed sources and derivations use it.
func Func(name string, fn func(ctx context.Context) (string, error)) Source {
	return Source{Name: name, kind: sourceFunc, fn: fn, rule: Line()}
}

// Text is a Func source over text that was already fetched.
func Text(name, text string) Source {
	return Func(name, func(context.Context) (string, error) {
		return text, nil
	})
}

// Derived is a Func source whose value is computed from other facts.
func Derived(name string, fn func() Fact) Source {
	return Func(name, func(context.Context) (string, error) {
		f := fn()
		if !f.Present() {
			return "", ErrNoValue
		}
		return strings.Join(f.values, "\n"), nil
	}).With(Line().All())
}

// With replaces the extraction rule.
func (s Source) With(rule Rule) Source {
	s.rule = rule
	return s
}

// WithTimeout bounds the source; zero means the resolver default.
func (s Source) WithTimeout(d time.Duration) Source {
	s.timeout = d
	return s
}

// Tool returns the executable a command source depends on.
func (s Source) Tool() string {
	if s.kind != sourceCommand || len(s.args) == 0 {
		return ""
	}
	return s.args[0]
}

// Chain is an ordered list of sources for one fact.
type Chain []Source
