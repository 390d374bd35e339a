package detect

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

const openCLVendorsGlob = "/etc/OpenCL/vendors/*.icd"

// openCLDetector lists OpenCL platforms and devices through clinfo.
type openCLDetector struct{}

func (d *openCLDetector) Name() string    { return "opencl" }
func (d *openCLDetector) Section() string { return "OpenCL" }
func (d *openCLDetector) Role() Role      { return RoleAuxiliary }

func (d *openCLDetector) Tools(shell.Host) []string {
	return []string{"clinfo"}
}

func (d *openCLDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	s.Emit("platforms", r.Resolve(ctx, "platforms", fact.Chain{
		fact.Command("clinfo", "-l").With(fact.Regex(`^Platform #\d+:[ \t]*(.+)$`).All()),
		fact.Command("clinfo").With(fact.Regex(`^[ \t]*Platform Name[ \t]+(.+)$`).All()),
	}))

	devices := r.Resolve(ctx, "devices", fact.Chain{
		fact.Command("clinfo", "-l").With(fact.Regex(`Device #\d+:[ \t]*(.+)$`).All()),
		fact.Command("clinfo").With(fact.Regex(`^[ \t]*Device Name[ \t]+(.+)$`).All()),
	})
	emitRows(s, "device", "devices", devices)

	host := r.Host()
	s.Emit("icd_files", r.Resolve(ctx, "icd_files", fact.Chain{
		fact.Func(openCLVendorsGlob, func(context.Context) (string, error) {
			matches, err := host.Glob(openCLVendorsGlob)
			if err != nil {
				return "", err
			}
			for i, m := range matches {
				matches[i] = filepath.Base(m)
			}
			return strings.Join(matches, "\n"), nil
		}).With(fact.Line().All()),
	}))
}
