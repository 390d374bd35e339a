package detect

import (
	"context"
	"time"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

// pythonProbeScript prints one JSON object with the versions of the ML
// frameworks it can import. Missing frameworks are left out.
const pythonProbeScript = `import json, platform
out = {"python_version": platform.python_version()}
try:
    import torch
    out["torch"] = torch.__version__
    out["torch_cuda"] = torch.version.cuda or ""
    out["cuda_available"] = str(torch.cuda.is_available()).lower()
except Exception:
    pass
try:
    import tensorflow as tf
    out["tensorflow"] = tf.__version__
except Exception:
    pass
try:
    import jax
    out["jax"] = jax.__version__
except Exception:
    pass
print(json.dumps(out))`

// pythonDetector asks a Python interpreter which ML frameworks it can load.
type pythonDetector struct {
	interpreter string
	timeout     time.Duration
}

func (d *pythonDetector) Name() string    { return "python" }
func (d *pythonDetector) Section() string { return "Python frameworks" }
func (d *pythonDetector) Role() Role      { return RoleToolchain }

func (d *pythonDetector) Tools(shell.Host) []string {
	return []string{d.interpreter}
}

func (d *pythonDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	probe := fact.Command(d.interpreter, "-c", pythonProbeScript).WithTimeout(d.timeout)
	probe.Name = d.interpreter + " -c <probe>"

	pip := func(pkg string) fact.Source {
		return fact.Command(d.interpreter, "-m", "pip", "show", pkg).
			WithTimeout(d.timeout).
			With(fact.Regex(`^Version:[ \t]*(\S+)`))
	}

	s.Emit("interpreter", fact.Of("interpreter", d.interpreter))
	s.Emit("python_version", r.Resolve(ctx, "python_version", fact.Chain{
		probe.With(fact.JSONKey("python_version")),
		fact.Command(d.interpreter, "--version").WithTimeout(d.timeout).With(fact.Regex(`Python[ \t]+(\S+)`)),
	}))
	s.Emit("torch", r.Resolve(ctx, "torch", fact.Chain{
		probe.With(fact.JSONKey("torch")),
		pip("torch"),
	}))
	s.Emit("torch_cuda", r.Resolve(ctx, "torch_cuda", fact.Chain{
		probe.With(fact.JSONKey("torch_cuda")),
	}))
	s.Emit("cuda_available", r.Resolve(ctx, "cuda_available", fact.Chain{
		probe.With(fact.JSONKey("cuda_available")),
	}))
	s.Emit("tensorflow", r.Resolve(ctx, "tensorflow", fact.Chain{
		probe.With(fact.JSONKey("tensorflow")),
		pip("tensorflow"),
	}))
	s.Emit("jax", r.Resolve(ctx, "jax", fact.Chain{
		probe.With(fact.JSONKey("jax")),
		pip("jax"),
	}))
}
