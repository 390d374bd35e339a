package detect

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

const defaultROCmPath = "/opt/rocm"

// amdDetector reports AMD GPUs through rocm-smi.
type amdDetector struct{}

func (d *amdDetector) Name() string    { return "amd" }
func (d *amdDetector) Section() string { return "AMD" }
func (d *amdDetector) Role() Role      { return RoleVendor }

func (d *amdDetector) Tools(shell.Host) []string {
	return []string{"rocm-smi"}
}

func (d *amdDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	s.Emit("driver_version", r.Resolve(ctx, "driver_version", fact.Chain{
		fact.Command("rocm-smi", "--showdriverversion", "--json").With(fact.JSONKey("").Each("Driver version")),
		fact.Command("rocm-smi", "--showdriverversion").With(fact.Regex(`Driver version:[ \t]*(\S+)`)),
		fact.File("/sys/module/amdgpu/version"),
	}))

	s.Emit("rocm_version", r.Resolve(ctx, "rocm_version", rocmVersionChain(r.Host())))

	productJSON := fact.Command("rocm-smi", "--showproductname", "--json")
	productText := fact.Command("rocm-smi", "--showproductname")
	memJSON := fact.Command("rocm-smi", "--showmeminfo", "vram", "--json")
	memText := fact.Command("rocm-smi", "--showmeminfo", "vram")

	cards := r.Resolve(ctx, "gpus", fact.Chain{
		productJSON.With(fact.JSONKey("").Keys().All().Then(cardIndex)),
		productText.With(fact.Regex(`^GPU\[(\d+)\][ \t]*:[ \t]*Card series:`).All()),
	})
	if !cards.Present() {
		s.Emit("gpus", cards)
		return
	}

	toMiB := fact.Scale(1<<20, "MiB")
	devices := make([]device, 0, len(cards.Values()))
	for _, idx := range cards.Values() {
		card := "card" + idx
		textField := func(label string) fact.Rule {
			return fact.Regex(`^GPU\[` + idx + `\][ \t]*:[ \t]*` + regexp.QuoteMeta(label) + `:[ \t]*(.+?)[ \t]*$`)
		}

		var d device
		d.name = r.Resolve(ctx, "name", fact.Chain{
			productJSON.With(fact.JSONKey(card).Each("Card series")),
			productText.With(textField("Card series")),
		})
		d.total = r.Resolve(ctx, "memory.total", fact.Chain{
			memJSON.With(fact.JSONKey(card).Each("VRAM Total Memory (B)").Then(toMiB)),
			memText.With(textField("VRAM Total Memory (B)").Then(toMiB)),
		})
		d.used = r.Resolve(ctx, "memory.used", fact.Chain{
			memJSON.With(fact.JSONKey(card).Each("VRAM Total Used Memory (B)").Then(toMiB)),
			memText.With(textField("VRAM Total Used Memory (B)").Then(toMiB)),
		})
		resolveFree(ctx, r, &d, nil)
		devices = append(devices, d)
	}
	emitDevices(s, devices)
}

// cardIndex turns a rocm-smi JSON key such as "card1" into "1" and drops
// keys that do not name a card.
func cardIndex(key string) (string, bool) {
	idx, ok := strings.CutPrefix(key, "card")
	if !ok || idx == "" {
		return "", false
	}
	if _, err := strconv.Atoi(idx); err != nil {
		return "", false
	}
	return idx, true
}

func rocmVersionChain(h shell.Host) fact.Chain {
	var chain fact.Chain
	if root := h.Getenv("ROCM_PATH"); root != "" {
		chain = append(chain, fact.File(filepath.Join(root, ".info", "version")))
	}
	return append(chain,
		fact.File(filepath.Join(defaultROCmPath, ".info", "version")),
		fact.Command("hipconfig", "--version"),
	)
}
