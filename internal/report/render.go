package report

import (
	"bufio"
	"fmt"
	"io"
)

// Options controls rendering.
type Options struct {
	// Verbose appends the miss reason to unavailable values.
	Verbose bool
	// Color enables ANSI styling. Plain output is byte-stable.
	Color bool
}

// Render writes the report to w:
//
//	== NAME ==
//	  label: value
//
//	warning: text
//
// Items are separated by a blank line.
func (r *Report) Render(w io.Writer, opts Options) error {
	st := plainStyles()
	if opts.Color {
		st = colorStyles(w)
	}

	bw := bufio.NewWriter(w)
	for i, it := range r.items {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		if it.section == nil {
			fmt.Fprintf(bw, "%s %s\n", st.warning("warning:"), it.warning)
			continue
		}
		fmt.Fprintln(bw, st.header("== "+it.section.Name+" =="))
		for _, row := range it.section.Rows {
			fmt.Fprintf(bw, "  %s %s\n", st.label(row.Label+":"), formatValue(row, opts.Verbose, st))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func formatValue(row Row, verbose bool, st styles) string {
	if row.Fact.Present() {
		return st.value(row.Fact.Or(Unavailable))
	}
	text := Unavailable
	if verbose {
		text += " (" + row.Fact.Miss().String() + ")"
	}
	return st.missing(text)
}
