package sysinfo

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

func (c *Collector) collectSystem(ctx context.Context, r *fact.Resolver, snap *snapshot, s *report.Section) {
	info := func(get func(*host.InfoStat) string) fact.Source {
		return from("gopsutil", &snap.host, get)
	}

	s.Emit("hostname", r.Resolve(ctx, "hostname", fact.Chain{
		info(func(h *host.InfoStat) string { return h.Hostname }),
		fact.Command("hostname"),
		fact.File("/proc/sys/kernel/hostname"),
	}))

	s.Emit("os", r.Resolve(ctx, "os", fact.Chain{
		info(func(h *host.InfoStat) string { return h.OS }),
		fact.Text("runtime", runtime.GOOS),
	}))

	s.Emit("platform", r.Resolve(ctx, "platform", fact.Chain{
		info(func(h *host.InfoStat) string {
			return strings.TrimSpace(h.Platform + " " + h.PlatformVersion)
		}),
		fact.File("/etc/os-release").With(fact.Regex(`^PRETTY_NAME="?([^"\n]+)"?$`)),
		fact.Command("sw_vers", "-productVersion").With(fact.Line().Then(prefix("macOS "))),
	}))

	s.Emit("kernel", r.Resolve(ctx, "kernel", fact.Chain{
		info(func(h *host.InfoStat) string { return h.KernelVersion }),
		fact.Command("uname", "-r"),
		fact.File("/proc/sys/kernel/osrelease"),
		fact.Func("uname(2)", unameRelease),
	}))

	s.Emit("arch", r.Resolve(ctx, "arch", fact.Chain{
		info(func(h *host.InfoStat) string { return h.KernelArch }),
		fact.Command("uname", "-m"),
		fact.Text("runtime", runtime.GOARCH),
	}))

	s.Emit("uptime", r.Resolve(ctx, "uptime", fact.Chain{
		info(func(h *host.InfoStat) string {
			return formatUptime(h.Uptime)
		}),
		fact.File("/proc/uptime").With(fact.Column("", 0).Then(func(v string) (string, bool) {
			secs, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "", false
			}
			return formatUptime(uint64(secs)), true
		})),
	}))

	s.Emit("boot_time", r.Resolve(ctx, "boot_time", fact.Chain{
		info(func(h *host.InfoStat) string {
			if h.BootTime == 0 {
				return ""
			}
			return time.Unix(int64(h.BootTime), 0).UTC().Format(time.RFC3339)
		}),
	}))

	s.Emit("processes", r.Resolve(ctx, "processes", fact.Chain{
		fact.Func("gopsutil", func(ctx context.Context) (string, error) {
			n, err := c.stats.Processes(ctx)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(n), nil
		}),
		info(func(h *host.InfoStat) string {
			if h.Procs == 0 {
				return ""
			}
			return strconv.FormatUint(h.Procs, 10)
		}),
	}))

	s.Emit("virtualization", r.Resolve(ctx, "virtualization", fact.Chain{
		info(func(h *host.InfoStat) string {
			if h.VirtualizationSystem == "" {
				return ""
			}
			return strings.TrimSpace(h.VirtualizationSystem + " " + h.VirtualizationRole)
		}),
		fact.Command("systemd-detect-virt").With(fact.Line().Then(func(v string) (string, bool) {
			return v, v != "none"
		})),
	}))
}

// formatUptime renders whole seconds as a duration such as "76h5m3s".
func formatUptime(secs uint64) string {
	if secs == 0 {
		return ""
	}
	return (time.Duration(secs) * time.Second).String()
}

func prefix(p string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		return p + v, true
	}
}
