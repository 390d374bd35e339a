package detect

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

const pciDevicesRoot = "/sys/bus/pci/devices"

// PCI class 0x03 is "display controller".
const pciDisplayClassPrefix = "0x03"

// pciDetector lists display-class PCI devices when no vendor tool answered.
type pciDetector struct{}

func (d *pciDetector) Name() string    { return "pci" }
func (d *pciDetector) Section() string { return "PCI display devices" }
func (d *pciDetector) Role() Role      { return RoleFallback }

func (d *pciDetector) Tools(shell.Host) []string {
	return []string{"lspci"}
}

func (d *pciDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	host := r.Host()
	devices := r.Resolve(ctx, "devices", fact.Chain{
		fact.Command("lspci").With(fact.Regex(
			`^\S+[ \t]+(?:VGA compatible controller|3D controller|Display controller)[^:]*:[ \t]*(.+)$`,
		).All()),
		fact.Func(pciDevicesRoot, func(context.Context) (string, error) {
			return scanPCIDisplayDevices(host)
		}).With(fact.Line().All()),
	})
	emitRows(s, "device", "devices", devices)
}

// scanPCIDisplayDevices walks sysfs for display-class functions and
// describes each as "<slot> <vendor> device 0x<id>".
func scanPCIDisplayDevices(h shell.Host) (string, error) {
	classes, err := h.Glob(filepath.Join(pciDevicesRoot, "*", "class"))
	if err != nil {
		return "", err
	}
	if len(classes) == 0 {
		return "", fmt.Errorf("%s: %w", pciDevicesRoot, shell.ErrToolUnavailable)
	}

	var lines []string
	for _, classPath := range classes {
		class, err := h.ReadFile(classPath)
		if err != nil || !strings.HasPrefix(strings.TrimSpace(string(class)), pciDisplayClassPrefix) {
			continue
		}
		dir := filepath.Dir(classPath)
		vendor := strings.TrimPrefix(readTrimmed(h, filepath.Join(dir, "vendor")), "0x")
		dev := readTrimmed(h, filepath.Join(dir, "device"))
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s %s device %s", filepath.Base(dir), pciVendorName(vendor), dev)))
	}
	if len(lines) == 0 {
		return "", fact.ErrNoValue
	}
	return strings.Join(lines, "\n"), nil
}

func readTrimmed(h shell.Host, path string) string {
	data, err := h.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// pciVendorName maps a PCI vendor ID to a human-readable name.
func pciVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD"
	case "10de":
		return "NVIDIA"
	case "8086":
		return "Intel"
	default:
		if vendorID != "" {
			return fmt.Sprintf("0x%s", vendorID)
		}
		return "unknown vendor"
	}
}
