package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

// NoGPUToolWarning is emitted when every GPU detector, the PCI fallback
// included, came up absent.
const NoGPUToolWarning = "no known GPU tool detected"

// Result is the final state of one detector.
type Result struct {
	Name  string
	State State
}

// Outcome lists every detector's final state in run order.
type Outcome struct {
	Results []Result
}

// State returns the state of the named detector, NotTried if unknown.
func (o Outcome) State(name string) State {
	for _, r := range o.Results {
		if r.Name == name {
			return r.State
		}
	}
	return NotTried
}

// Orchestrator runs a fixed, ordered set of detectors.
type Orchestrator struct {
	cfg       *config.Config
	host      shell.Host
	logger    *slog.Logger
	platform  string
	nvml      NVMLQuery
	detectors []Detector
}

type Option func(*Orchestrator)

// WithNVML sets the NVML query used by the NVIDIA detector. Nil disables
// NVML.
func WithNVML(q NVMLQuery) Option {
	return func(o *Orchestrator) {
		o.nvml = q
	}
}

// WithDetectors replaces the default detector set.
func WithDetectors(ds ...Detector) Option {
	return func(o *Orchestrator) {
		o.detectors = ds
	}
}

// New builds the detector set for the platform identified from cfg.
func New(cfg *config.Config, host shell.Host, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		host:     host,
		logger:   logger,
		platform: Identify(cfg),
		nvml:     DefaultNVML,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.detectors == nil {
		o.detectors = []Detector{
			&nvidiaDetector{nvml: o.nvml},
			&amdDetector{},
			&openCLDetector{},
			platformDetector(o.platform),
			&pciDetector{},
			&cudaDetector{},
			&pythonDetector{interpreter: cfg.Python.Interpreter, timeout: cfg.Python.Timeout},
		}
	}
	return o
}

// Platform is the platform the detector set was built for.
func (o *Orchestrator) Platform() string {
	return o.platform
}

// Run tries every detector in priority order and appends a section for each
// one found. It never fails: a detector that breaks loses its facts, not the
// run.
func (o *Orchestrator) Run(ctx context.Context, rep *report.Report) Outcome {
	r := fact.NewResolver(o.host, o.logger, o.cfg.Detect.CommandTimeout)

	var (
		out           Outcome
		vendorPresent bool
		gpuPresent    bool
		gpuNotTried   bool
		warned        bool
	)
	for _, d := range o.detectors {
		// Toolchain detectors come after the GPU ones; settle the
		// diagnostic before their sections.
		if d.Role() == RoleToolchain && !warned {
			warned = true
			o.warnIfNoGPU(rep, gpuPresent, gpuNotTried)
		}

		state := NotTried
		switch {
		case o.skipped(d):
			o.logger.Debug("detector skipped", "detector", d.Name())
		case d.Role() == RoleFallback && vendorPresent:
			o.logger.Debug("fallback not needed", "detector", d.Name())
		default:
			state = o.run(ctx, r, rep, d)
		}

		out.Results = append(out.Results, Result{Name: d.Name(), State: state})
		if !d.Role().gpu() {
			continue
		}
		switch state {
		case Present:
			gpuPresent = true
			vendorPresent = vendorPresent || d.Role() == RoleVendor
		case NotTried:
			gpuNotTried = true
		}
	}
	if !warned {
		o.warnIfNoGPU(rep, gpuPresent, gpuNotTried)
	}
	return out
}

func (o *Orchestrator) warnIfNoGPU(rep *report.Report, present, notTried bool) {
	if !present && !notTried {
		rep.Warn(NoGPUToolWarning)
	}
}

func (o *Orchestrator) skipped(d Detector) bool {
	if o.cfg.Skipped(d.Name()) {
		return true
	}
	return d.Name() == "python" && !o.cfg.Python.Enabled
}

// run probes d and, when present, collects its section. A panic inside the
// detector is logged and leaves a failed status row behind.
func (o *Orchestrator) run(ctx context.Context, r *fact.Resolver, rep *report.Report, d Detector) (state State) {
	if !Probe(o.host, d) {
		o.logger.Debug("detector absent", "detector", d.Name(), "tools", d.Tools(o.host))
		return Absent
	}

	o.logger.Debug("detector present", "detector", d.Name())
	s := rep.Begin(d.Section())
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("detector failed",
				"detector", d.Name(),
				"panic", fmt.Sprint(rec),
			)
			s.Emit("status", fact.Absent("status", fact.SourceFailed))
		}
	}()

	state = Present
	d.Collect(ctx, r, s)
	return state
}
