package detect

import (
	"context"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

// platformDetector returns the native GPU detector for a platform.
func platformDetector(platform string) Detector {
	switch platform {
	case "darwin":
		return &appleDetector{}
	case "windows":
		return &windowsDetector{}
	default:
		return &intelDetector{}
	}
}

// appleDetector reads the display report from system_profiler.
type appleDetector struct{}

func (d *appleDetector) Name() string    { return "platform" }
func (d *appleDetector) Section() string { return "Apple GPU" }
func (d *appleDetector) Role() Role      { return RoleVendor }

func (d *appleDetector) Tools(shell.Host) []string {
	return []string{"system_profiler"}
}

func (d *appleDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	jsonReport := fact.Command("system_profiler", "SPDisplaysDataType", "-json")
	textReport := fact.Command("system_profiler", "SPDisplaysDataType")

	field := func(name, key, label string) {
		s.Emit(name, r.Resolve(ctx, name, fact.Chain{
			jsonReport.With(fact.JSONKey("SPDisplaysDataType.#." + key).All()),
			textReport.With(fact.Regex(`^[ \t]*` + label + `:[ \t]*(.+)$`).All()),
		}))
	}
	field("gpus", "sppci_model", "Chipset Model")
	field("vendor", "spdisplays_vendor", "Vendor")
	field("cores", "sppci_cores", "Total Number of Cores")
	field("metal", "spdisplays_mtlgpufamilysupport", "Metal(?: Support| Family)?")

	s.Emit("unified_memory", r.Resolve(ctx, "unified_memory", fact.Chain{
		fact.Command("sysctl", "-n", "hw.memsize").With(fact.Line().Then(fact.Scale(1<<20, "MiB"))),
	}))
}

// windowsDetector reads Win32_VideoController through PowerShell, then wmic.
type windowsDetector struct{}

func (d *windowsDetector) Name() string    { return "platform" }
func (d *windowsDetector) Section() string { return "Windows GPU" }
func (d *windowsDetector) Role() Role      { return RoleVendor }

func (d *windowsDetector) Tools(shell.Host) []string {
	return []string{"powershell", "wmic"}
}

const videoControllerQuery = "Get-CimInstance Win32_VideoController | Select-Object Name,DriverVersion,AdapterRAM | ConvertTo-Json"

func (d *windowsDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	ps := fact.Command("powershell", "-NoProfile", "-Command", videoControllerQuery)
	wmic := func(prop string) fact.Source {
		return fact.Command("wmic", "path", "win32_VideoController", "get", prop)
	}

	s.Emit("gpus", r.Resolve(ctx, "gpus", fact.Chain{
		ps.With(fact.JSONKey("").Each("Name").All()),
		wmic("Name").With(fact.Line().All().Then(notHeader("Name"))),
	}))
	s.Emit("driver_version", r.Resolve(ctx, "driver_version", fact.Chain{
		ps.With(fact.JSONKey("").Each("DriverVersion").All()),
		wmic("DriverVersion").With(fact.Line().All().Then(notHeader("DriverVersion"))),
	}))

	toMiB := fact.Scale(1<<20, "MiB")
	s.Emit("adapter_ram", r.Resolve(ctx, "adapter_ram", fact.Chain{
		ps.With(fact.JSONKey("").Each("AdapterRAM").All().Then(toMiB)),
		wmic("AdapterRAM").With(fact.Line().All().Then(toMiB)),
	}))
}

// intelDetector covers Intel GPUs on Linux through intel_gpu_top and xpu-smi.
type intelDetector struct{}

func (d *intelDetector) Name() string    { return "platform" }
func (d *intelDetector) Section() string { return "Intel GPU" }
func (d *intelDetector) Role() Role      { return RoleVendor }

func (d *intelDetector) Tools(shell.Host) []string {
	return []string{"intel_gpu_top", "xpu-smi"}
}

func (d *intelDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	devices := r.Resolve(ctx, "gpus", fact.Chain{
		fact.Command("intel_gpu_top", "-L").With(fact.Regex(`^card\d+[ \t]+(.+?)(?:[ \t]{2,}\S*pci:.*)?$`).All()),
		fact.Command("xpu-smi", "discovery").With(fact.Regex(`Device Name:[ \t]*(.+?)[ \t]*\|?$`).All()),
	})
	emitRows(s, "gpu", "gpus", devices)

	s.Emit("driver_version", r.Resolve(ctx, "driver_version", fact.Chain{
		fact.Command("xpu-smi", "discovery", "-d", "0").With(fact.Regex(`Driver Version:[ \t]*(.+?)[ \t]*\|?$`)),
		fact.File("/sys/module/i915/version"),
	}))
}
