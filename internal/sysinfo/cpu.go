package sysinfo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

func (c *Collector) collectCPU(ctx context.Context, r *fact.Resolver, snap *snapshot, s *report.Section) {
	first := func(get func(cpu.InfoStat) string) fact.Source {
		return from("gopsutil", &snap.cpu, func(infos []cpu.InfoStat) string {
			if len(infos) == 0 {
				return ""
			}
			return get(infos[0])
		})
	}
	count := func(logical bool) fact.Source {
		return fact.Func("gopsutil", func(ctx context.Context) (string, error) {
			n, err := c.stats.Cores(ctx, logical)
			if err != nil {
				return "", err
			}
			if n == 0 {
				return "", fact.ErrNoValue
			}
			return strconv.Itoa(n), nil
		})
	}

	s.Emit("model", r.Resolve(ctx, "model", fact.Chain{
		first(func(i cpu.InfoStat) string { return i.ModelName }),
		fact.File("/proc/cpuinfo").With(fact.Regex(`^model name[ \t]*:[ \t]*(.+)$`)),
		fact.Command("sysctl", "-n", "machdep.cpu.brand_string"),
	}))

	s.Emit("physical_cores", r.Resolve(ctx, "physical_cores", fact.Chain{
		count(false),
		fact.Command("sysctl", "-n", "hw.physicalcpu").With(fact.Line().Numeric()),
	}))

	s.Emit("logical_cores", r.Resolve(ctx, "logical_cores", fact.Chain{
		count(true),
		fact.Command("nproc").With(fact.Line().Numeric()),
		fact.Command("sysctl", "-n", "hw.logicalcpu").With(fact.Line().Numeric()),
	}))

	s.Emit("frequency", r.Resolve(ctx, "frequency", fact.Chain{
		first(func(i cpu.InfoStat) string {
			if i.Mhz <= 0 {
				return ""
			}
			return fmt.Sprintf("%.0f MHz", i.Mhz)
		}),
		fact.File("/proc/cpuinfo").With(fact.Regex(`^cpu MHz[ \t]*:[ \t]*(\d+)`).Then(suffix(" MHz"))),
	}))
}

func suffix(sfx string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		return v + sfx, true
	}
}
