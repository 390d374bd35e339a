package sysinfo

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats is the library-backed view of the machine. Every method may fail;
// the collector then falls back to commands and files.
type Stats interface {
	Host(ctx context.Context) (*host.InfoStat, error)
	CPU(ctx context.Context) ([]cpu.InfoStat, error)
	Cores(ctx context.Context, logical bool) (int, error)
	Memory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Swap(ctx context.Context) (*mem.SwapMemoryStat, error)
	Disk(ctx context.Context, path string) (*disk.UsageStat, error)
	Processes(ctx context.Context) (int, error)
}

// Gopsutil reads Stats through gopsutil.
type Gopsutil struct{}

func (Gopsutil) Host(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (Gopsutil) CPU(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (Gopsutil) Cores(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (Gopsutil) Memory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (Gopsutil) Swap(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (Gopsutil) Disk(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (Gopsutil) Processes(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return len(pids), nil
}
