// Package detect finds GPU and accelerator tooling on the local machine and
// reports what each vendor tool can tell about it.
//
// Each Detector owns one report section and declares the tools that define
// it. The Orchestrator runs detectors in a fixed priority order, skips those
// whose tools are missing, and falls back to a generic PCI scan only when no
// vendor tool answered.
package detect

import (
	"context"
	"runtime"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

// State is where a detector ended up after a run.
type State int

const (
	NotTried State = iota
	Present
	Absent
)

func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "not tried"
	}
}

// Role decides how a detector takes part in fallback gating and in the
// "no known GPU tool" diagnostic.
type Role int

const (
	// RoleVendor detectors gate the PCI fallback and count as GPU tooling.
	RoleVendor Role = iota
	// RoleAuxiliary detectors count as GPU tooling but do not gate.
	RoleAuxiliary
	// RoleFallback is the generic bus scan, run only when no vendor answered.
	RoleFallback
	// RoleToolchain detectors report compute toolchains and never gate.
	RoleToolchain
)

func (r Role) gpu() bool {
	return r != RoleToolchain
}

// Detector is one capability probe with its own report section.
type Detector interface {
	// Name is the identifier used in configuration and logs.
	Name() string
	// Section is the report section title.
	Section() string
	Role() Role
	// Tools lists the executables that define the detector. It is present
	// when any of them resolves.
	Tools(h shell.Host) []string
	// Collect resolves the detector's facts into its section.
	Collect(ctx context.Context, r *fact.Resolver, s *report.Section)
}

// Identify returns the platform the detector set is built for: the
// configured override, or the running OS.
func Identify(cfg *config.Config) string {
	if cfg.Detect.Platform != "" {
		return cfg.Detect.Platform
	}
	return runtime.GOOS
}

// Probe reports whether any of d's defining tools resolves on h.
func Probe(h shell.Host, d Detector) bool {
	for _, tool := range d.Tools(h) {
		if shell.Probe(h, tool) {
			return true
		}
	}
	return false
}
