// Package report collects sections of facts in insertion order and renders
// them as stable, line-oriented text.
package report

import "github.com/haskel/gpuprobe/internal/fact"

// Unavailable is printed in place of a fact that has no value.
const Unavailable = "unavailable"

// Row is one labelled fact within a section.
type Row struct {
	Label string
	Fact  fact.Fact
}

// Section is a named, ordered group of rows.
type Section struct {
	Name string
	Rows []Row
}

// Emit appends a row. Rows render in the order they were emitted.
func (s *Section) Emit(label string, f fact.Fact) {
	s.Rows = append(s.Rows, Row{Label: label, Fact: f})
}

// Lookup returns the fact emitted under label.
func (s *Section) Lookup(label string) (fact.Fact, bool) {
	for _, row := range s.Rows {
		if row.Label == label {
			return row.Fact, true
		}
	}
	return fact.Fact{}, false
}

type item struct {
	section *Section
	warning string
}

// Report is an ordered sequence of sections and warnings.
type Report struct {
	items []item
}

func New() *Report {
	return &Report{}
}

// Begin starts a new section at the end of the report.
func (r *Report) Begin(name string) *Section {
	s := &Section{Name: name}
	r.items = append(r.items, item{section: s})
	return s
}

// Warn appends a diagnostic line.
func (r *Report) Warn(text string) {
	r.items = append(r.items, item{warning: text})
}

// Sections returns the sections in display order.
func (r *Report) Sections() []*Section {
	var out []*Section
	for _, it := range r.items {
		if it.section != nil {
			out = append(out, it.section)
		}
	}
	return out
}

// Section returns the first section with the given name.
func (r *Report) Section(name string) (*Section, bool) {
	for _, s := range r.Sections() {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Warnings returns the warnings in display order.
func (r *Report) Warnings() []string {
	var out []string
	for _, it := range r.items {
		if it.section == nil {
			out = append(out, it.warning)
		}
	}
	return out
}
