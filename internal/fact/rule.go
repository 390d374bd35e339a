package fact

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

type ruleKind int

const (
	kindLine ruleKind = iota
	kindRegex
	kindColumn
	kindJSON
)

type pick int

const (
	pickFirst pick = iota
	pickLast
	pickAll
)

// Rule is a declarative description of how to pull values out of raw text.
// Rules are values; modifiers return a changed copy.
type Rule struct {
	kind    ruleKind
	pattern *regexp.Regexp
	delim   string
	column  int
	path    string
	field   string
	keys    bool
	pick    pick
	where   *regexp.Regexp
	compact bool
	numeric bool
	then    []func(string) (string, bool)
}

// Line yields each trimmed non-empty line.
func Line() Rule {
	return Rule{kind: kindLine}
}

// Regex yields the first capture group of each match, or the whole match
// when the expression has no groups. The expression is compiled in
// multi-line mode.
func Regex(expr string) Rule {
	return Rule{kind: kindRegex, pattern: regexp.MustCompile("(?m)" + expr)}
}

// Column splits each non-empty line on delim (whitespace when delim is
// empty) and yields the column at index.
func Column(delim string, index int) Rule {
	return Rule{kind: kindColumn, delim: delim, column: index}
}

// JSONKey yields the value at a gjson path. An empty path selects the
// document root.
func JSONKey(path string) Rule {
	return Rule{kind: kindJSON, path: path}
}

// Each makes a JSON rule iterate the selected array elements (or object
// values) and take field from each.
func (r Rule) Each(field string) Rule {
	r.field = field
	return r
}

// Keys makes a JSON rule yield the keys of the selected object, in document
// order, instead of its values.
func (r Rule) Keys() Rule {
	r.keys = true
	return r
}

// Last keeps only the last candidate.
func (r Rule) Last() Rule {
	r.pick = pickLast
	return r
}

// All keeps every candidate in input order.
func (r Rule) All() Rule {
	r.pick = pickAll
	return r
}

// Where restricts line-based rules to lines matching expr.
func (r Rule) Where(expr string) Rule {
	r.where = regexp.MustCompile(expr)
	return r
}

// Compact removes whitespace between a number and its unit suffix.
func (r Rule) Compact() Rule {
	r.compact = true
	return r
}

// Numeric rejects candidates that do not start with an integer.
func (r Rule) Numeric() Rule {
	r.numeric = true
	return r
}

// Then post-processes each candidate; returning false drops it.
func (r Rule) Then(fn func(string) (string, bool)) Rule {
	r.then = append(append([]func(string) (string, bool){}, r.then...), fn)
	return r
}

var placeholders = map[string]bool{
	"n/a":             true,
	"[n/a]":           true,
	"not supported":   true,
	"[not supported]": true,
	"unknown":         true,
	"-":               true,
}

var (
	numberUnitRegex = regexp.MustCompile(`^(-?\d+)\s*([A-Za-z%][A-Za-z%/]*)?$`)
	compactRegex    = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s+(\S+)$`)
)

func (r Rule) candidates(raw string) []string {
	switch r.kind {
	case kindJSON:
		return r.jsonCandidates(raw)
	case kindRegex:
		var out []string
		for _, line := range r.lines(raw, false) {
			for _, m := range r.pattern.FindAllStringSubmatch(line, -1) {
				if len(m) > 1 {
					out = append(out, m[1])
				} else {
					out = append(out, m[0])
				}
			}
		}
		return out
	case kindColumn:
		var out []string
		for _, line := range r.lines(raw, true) {
			var cols []string
			if r.delim == "" {
				cols = strings.Fields(line)
			} else {
				cols = strings.Split(line, r.delim)
			}
			if r.column >= 0 && r.column < len(cols) {
				out = append(out, cols[r.column])
			}
		}
		return out
	default:
		return r.lines(raw, true)
	}
}

// lines splits raw into filtered lines. Regex rules without a filter see the
// whole text so that multi-line expressions keep working.
func (r Rule) lines(raw string, split bool) []string {
	if !split && r.where == nil {
		return []string{raw}
	}
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if r.where != nil && !r.where.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (r Rule) jsonCandidates(raw string) []string {
	if !gjson.Valid(raw) {
		return nil
	}
	res := gjson.Parse(raw)
	if r.path != "" {
		res = res.Get(r.path)
	}
	if !res.Exists() {
		return nil
	}

	if r.keys {
		var out []string
		if res.IsObject() {
			res.ForEach(func(k, _ gjson.Result) bool {
				out = append(out, k.String())
				return true
			})
		}
		return out
	}

	if r.field != "" {
		// A single object is treated as a one-element list.
		if v, ok := objectField(res, r.field); ok {
			return []string{v.String()}
		}
		var out []string
		res.ForEach(func(_, item gjson.Result) bool {
			if v, ok := objectField(item, r.field); ok {
				out = append(out, v.String())
			}
			return true
		})
		return out
	}

	if res.IsArray() {
		var out []string
		for _, item := range res.Array() {
			out = append(out, item.String())
		}
		return out
	}
	return []string{res.String()}
}

// objectField looks a key up literally; tool output keys often contain
// characters that are special in gjson paths.
func objectField(obj gjson.Result, key string) (gjson.Result, bool) {
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	var found gjson.Result
	ok := false
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

func (r Rule) clean(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || placeholders[strings.ToLower(v)] {
		return "", false
	}
	if r.compact {
		if m := compactRegex.FindStringSubmatch(v); m != nil {
			v = m[1] + m[2]
		}
	}
	if r.numeric {
		if _, _, ok := SplitNumber(v); !ok {
			return "", false
		}
	}
	for _, fn := range r.then {
		var ok bool
		if v, ok = fn(v); !ok || v == "" {
			return "", false
		}
	}
	return v, true
}

// SplitNumber splits a value like "16384MiB" or "512 MiB" into its integer
// and unit suffix. The unit must start with a letter or '%'; values with
// decimals or thousands separators do not parse.
func SplitNumber(v string) (int64, string, bool) {
	m := numberUnitRegex.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}
