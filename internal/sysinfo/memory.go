package sysinfo

import (
	"context"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

func (c *Collector) collectMemory(ctx context.Context, r *fact.Resolver, snap *snapshot, s *report.Section) {
	vm := func(get func(*mem.VirtualMemoryStat) uint64) fact.Source {
		return from("gopsutil", &snap.memory, func(m *mem.VirtualMemoryStat) string {
			return bytesOrEmpty(get(m))
		})
	}
	meminfoKiB := func(key string) fact.Source {
		return fact.File("/proc/meminfo").With(fact.Column("", 1).Where(`^` + key + `:`).Numeric())
	}
	meminfo := func(key string) fact.Source {
		return fact.File("/proc/meminfo").With(fact.Column("", 1).Where(`^` + key + `:`).Then(kibToBytes))
	}

	s.Emit("total", r.Resolve(ctx, "total", fact.Chain{
		vm(func(m *mem.VirtualMemoryStat) uint64 { return m.Total }),
		meminfo("MemTotal"),
		fact.Command("sysctl", "-n", "hw.memsize").With(fact.Line().Then(rawBytes)),
	}))
	s.Emit("used", r.Resolve(ctx, "used", fact.Chain{
		vm(func(m *mem.VirtualMemoryStat) uint64 { return m.Used }),
		fact.Derived("MemTotal-MemAvailable", func() fact.Fact {
			total := r.Resolve(ctx, "MemTotal", fact.Chain{meminfoKiB("MemTotal")})
			available := r.Resolve(ctx, "MemAvailable", fact.Chain{meminfoKiB("MemAvailable")})
			return fact.Subtract("used", total, available)
		}).With(fact.Line().Then(kibToBytes)),
	}))
	s.Emit("available", r.Resolve(ctx, "available", fact.Chain{
		vm(func(m *mem.VirtualMemoryStat) uint64 { return m.Available }),
		meminfo("MemAvailable"),
	}))
	s.Emit("swap", r.Resolve(ctx, "swap", fact.Chain{
		fact.Func("gopsutil", func(ctx context.Context) (string, error) {
			sw, err := c.stats.Swap(ctx)
			if err != nil {
				return "", err
			}
			if sw.Total == 0 {
				return "none", nil
			}
			return bytesOrEmpty(sw.Total), nil
		}),
		meminfo("SwapTotal"),
	}))
}

func bytesOrEmpty(n uint64) string {
	if n == 0 {
		return ""
	}
	return humanize.IBytes(n)
}

// kibToBytes converts a /proc/meminfo kB count into a human-readable size.
func kibToBytes(v string) (string, bool) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return "", false
	}
	return humanize.IBytes(n * 1024), true
}

func rawBytes(v string) (string, bool) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return "", false
	}
	return humanize.IBytes(n), true
}
