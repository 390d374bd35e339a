package sysinfo

import (
	"context"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

const dmiRoot = "/sys/class/dmi/id/"

func (c *Collector) collectIdentifiers(ctx context.Context, r *fact.Resolver, snap *snapshot, s *report.Section) {
	s.Emit("host_id", r.Resolve(ctx, "host_id", fact.Chain{
		from("gopsutil", &snap.host, func(h *host.InfoStat) string { return h.HostID }),
		fact.File("/etc/machine-id"),
		fact.File("/var/lib/dbus/machine-id"),
	}))

	for _, name := range []string{"board_vendor", "board_name", "product_name"} {
		s.Emit(name, r.Resolve(ctx, name, fact.Chain{
			fact.File(dmiRoot + name),
		}))
	}
}
