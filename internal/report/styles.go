package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors
var (
	colorPrimary = lipgloss.Color("86")  // Cyan
	colorWarning = lipgloss.Color("214") // Orange
	colorMuted   = lipgloss.Color("245") // Light gray
	colorValue   = lipgloss.Color("252")
)

// styles renders the pieces of a report.
type styles struct {
	header  func(string) string
	label   func(string) string
	value   func(string) string
	missing func(string) string
	warning func(string) string
}

func plainStyles() styles {
	id := func(s string) string { return s }
	return styles{header: id, label: id, value: id, missing: id, warning: id}
}

func colorStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)

	header := r.NewStyle().Bold(true).Foreground(colorPrimary)
	label := r.NewStyle().Foreground(colorMuted)
	value := r.NewStyle().Foreground(colorValue)
	missing := r.NewStyle().Foreground(colorMuted).Italic(true)
	warning := r.NewStyle().Foreground(colorWarning).Bold(true)

	return styles{
		header:  func(s string) string { return header.Render(s) },
		label:   func(s string) string { return label.Render(s) },
		value:   func(s string) string { return value.Render(s) },
		missing: func(s string) string { return missing.Render(s) },
		warning: func(s string) string { return warning.Render(s) },
	}
}
