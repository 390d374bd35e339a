// Package fact models optional pieces of machine state and the declarative
// machinery that obtains them: extraction rules over raw tool output, ordered
// source chains, and the resolver that walks a chain until one source yields a
// value.
//
// Absence is a normal outcome. A Fact that could not be resolved carries a
// Miss describing why, so callers and tests can tell a timeout from a parse
// miss without any error ever reaching them.
package fact

import "strings"

// Miss explains why a Fact has no value.
type Miss int

const (
	// NotAttempted means no source was tried.
	NotAttempted Miss = iota
	// ToolUnavailable means the source's executable was not found.
	ToolUnavailable
	// ParseMiss means the source produced output but the rule matched nothing.
	ParseMiss
	// SourceFailed means the source errored (non-zero exit, unreadable file).
	SourceFailed
	// TimeoutExceeded means the source ran out of time.
	TimeoutExceeded
)

func (m Miss) String() string {
	switch m {
	case ToolUnavailable:
		return "tool unavailable"
	case ParseMiss:
		return "no match"
	case SourceFailed:
		return "source failed"
	case TimeoutExceeded:
		return "timeout"
	default:
		return "not attempted"
	}
}

// Fact is a named, optional value.
type Fact struct {
	Name   string
	values []string
	miss   Miss
	source string
}

// Of returns a present Fact. Empty values are dropped; if none remain the
// Fact is absent with ParseMiss.
func Of(name string, values ...string) Fact {
	f := Fact{Name: name}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			f.values = append(f.values, v)
		}
	}
	if len(f.values) == 0 {
		f.miss = ParseMiss
	}
	return f
}

// Absent returns a Fact with no value and the given reason.
func Absent(name string, miss Miss) Fact {
	return Fact{Name: name, miss: miss}
}

func (f Fact) Present() bool {
	return len(f.values) > 0
}

// Value returns the first value, or "" when absent.
func (f Fact) Value() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}

// Values returns a copy of all values.
func (f Fact) Values() []string {
	out := make([]string, len(f.values))
	copy(out, f.values)
	return out
}

// Miss returns the absence reason; meaningless when the Fact is present.
func (f Fact) Miss() Miss {
	return f.miss
}

// Source names the source that produced the value, if any.
func (f Fact) Source() string {
	return f.source
}

// Or returns the values joined with ", ", or fallback when absent.
func (f Fact) Or(fallback string) string {
	if f.Present() {
		return strings.Join(f.values, ", ")
	}
	return fallback
}

func (f Fact) withSource(source string) Fact {
	f.source = source
	return f
}

// worse reports whether m carries more information than other.
func (m Miss) worse(other Miss) bool {
	return m > other
}
