package detect

import (
	"context"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

const smiQueryFields = "name,memory.total,memory.used,memory.free"

// Column indexes in the nvidia-smi device query.
const (
	smiFieldName = iota
	smiFieldMemoryTotal
	smiFieldMemoryUsed
	smiFieldMemoryFree
)

// nvidiaDetector reports NVIDIA GPUs through NVML and nvidia-smi.
type nvidiaDetector struct {
	nvml NVMLQuery
}

func (d *nvidiaDetector) Name() string    { return "nvidia" }
func (d *nvidiaDetector) Section() string { return "NVIDIA" }
func (d *nvidiaDetector) Role() Role      { return RoleVendor }

func (d *nvidiaDetector) Tools(shell.Host) []string {
	return []string{"nvidia-smi"}
}

func (d *nvidiaDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	lib := &nvmlReader{query: d.nvml}
	banner := fact.Command("nvidia-smi")

	s.Emit("driver_version", r.Resolve(ctx, "driver_version", fact.Chain{
		fact.Func("nvml", lib.field(func(s NVMLSnapshot) string { return s.DriverVersion })),
		fact.Command("nvidia-smi", "--query-gpu=driver_version", "--format=csv,noheader"),
		banner.With(fact.Regex(`Driver Version:[ \t]*([0-9.]+)`)),
		fact.File("/proc/driver/nvidia/version").With(fact.Regex(`Kernel Module[ \t]+([0-9.]+)`)),
	}))

	s.Emit("cuda_driver", r.Resolve(ctx, "cuda_driver", fact.Chain{
		fact.Func("nvml", lib.field(func(s NVMLSnapshot) string { return s.CUDADriverVersion })),
		banner.With(fact.Regex(`CUDA Version:[ \t]*([0-9.]+)`)),
	}))

	table := r.Resolve(ctx, "gpus", fact.Chain{
		fact.Func("nvml", lib.field(NVMLSnapshot.table)).With(fact.Line().All()),
		fact.Command("nvidia-smi", "--query-gpu="+smiQueryFields, "--format=csv,noheader").With(fact.Line().All()),
		fact.Command("nvidia-smi", "-L").With(fact.Regex(`^GPU \d+:[ \t]*(.*?)(?:[ \t]+\(UUID:.*)?$`).All()),
	})
	if !table.Present() {
		s.Emit("gpus", table)
		return
	}

	devices := make([]device, 0, len(table.Values()))
	for _, row := range table.Values() {
		devices = append(devices, smiDevice(ctx, r, table.Source(), row))
	}
	emitDevices(s, devices)
}

// smiDevice resolves one device from a row in nvidia-smi CSV layout.
func smiDevice(ctx context.Context, r *fact.Resolver, source, row string) device {
	col := func(i int) fact.Source {
		return fact.Text(source, row).With(fact.Column(",", i).Compact())
	}

	var d device
	d.name = r.Resolve(ctx, "name", fact.Chain{col(smiFieldName)})
	d.total = r.Resolve(ctx, "memory.total", fact.Chain{col(smiFieldMemoryTotal)})
	d.used = r.Resolve(ctx, "memory.used", fact.Chain{col(smiFieldMemoryUsed)})
	resolveFree(ctx, r, &d, fact.Chain{col(smiFieldMemoryFree)})
	return d
}
