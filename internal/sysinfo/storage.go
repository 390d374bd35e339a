package sysinfo

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

func (c *Collector) collectDisk(ctx context.Context, r *fact.Resolver, path string, s *report.Section) {
	usage := &lazy[*disk.UsageStat]{fn: func(ctx context.Context) (*disk.UsageStat, error) {
		return c.stats.Disk(ctx, path)
	}}
	df := fact.Command("df", "-Pk", path)
	dfColumn := func(i int) fact.Source {
		return df.With(fact.Column("", i).Where(`^\S+\s+\d+\s`).Last().Then(kibToBytes))
	}

	s.Emit("total", r.Resolve(ctx, "total", fact.Chain{
		from("gopsutil", usage, func(u *disk.UsageStat) string { return bytesOrEmpty(u.Total) }),
		dfColumn(1),
	}))
	s.Emit("used", r.Resolve(ctx, "used", fact.Chain{
		from("gopsutil", usage, func(u *disk.UsageStat) string { return humanize.IBytes(u.Used) }),
		dfColumn(2),
	}))
	s.Emit("free", r.Resolve(ctx, "free", fact.Chain{
		from("gopsutil", usage, func(u *disk.UsageStat) string { return humanize.IBytes(u.Free) }),
		dfColumn(3),
	}))
	s.Emit("usage", r.Resolve(ctx, "usage", fact.Chain{
		from("gopsutil", usage, func(u *disk.UsageStat) string {
			if u.Total == 0 {
				return ""
			}
			return fmt.Sprintf("%.1f%%", u.UsedPercent)
		}),
		df.With(fact.Column("", 4).Where(`^\S+\s+\d+\s`).Last()),
	}))
}
