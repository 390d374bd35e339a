package cli

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/detect"
	"github.com/haskel/gpuprobe/internal/logger"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/sysinfo"
)

// probeRun is one resolved invocation: configuration after flags, plus the
// logger built from it.
type probeRun struct {
	deps *Deps
	cfg  *config.Config
	log  *slog.Logger
}

// loadConfig layers the config file, GPUPROBE_* variables and the persistent
// flags. apply sets command-specific flags on top.
func loadConfig(deps *Deps, flags *rootFlags, apply func(*config.Config)) (*probeRun, error) {
	if flags.color != "" && !validColor(flags.color) {
		return nil, usageErrorf("invalid --color %q: must be auto, always or never", flags.color)
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if flags.color != "" {
		cfg.Output.Color = flags.color
	}
	if apply != nil {
		apply(cfg)
	}

	level := cfg.Logging.Level
	if cfg.Output.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(deps.Stderr, level, cfg.Logging.Format)
	log.Debug("configuration loaded",
		"config", flags.configFile,
		"platform", detect.Identify(cfg),
		"python", cfg.Python.Enabled,
	)

	return &probeRun{deps: deps, cfg: cfg, log: log}, nil
}

func (p *probeRun) detectGPU(ctx context.Context, rep *report.Report) {
	outcome := detect.New(p.cfg, p.deps.Host, p.log, detect.WithNVML(p.deps.NVML)).Run(ctx, rep)
	for _, res := range outcome.Results {
		p.log.Debug("detector finished", "detector", res.Name, "state", res.State.String())
	}
}

func (p *probeRun) collectSystem(ctx context.Context, rep *report.Report) {
	var opts []sysinfo.Option
	if p.deps.Stats != nil {
		opts = append(opts, sysinfo.WithStats(p.deps.Stats))
	}
	sysinfo.New(p.cfg, p.deps.Host, p.log, opts...).Collect(ctx, rep)
}

func (p *probeRun) render(rep *report.Report) error {
	return rep.Render(p.deps.Stdout, report.Options{
		Verbose: p.cfg.Output.Verbose,
		Color:   p.useColor(),
	})
}

func (p *probeRun) useColor() bool {
	switch p.cfg.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if p.deps.Host.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := p.deps.Stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func validColor(c string) bool {
	switch c {
	case "auto", "always", "never":
		return true
	}
	return false
}
