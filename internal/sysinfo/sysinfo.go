// Package sysinfo reports general system information: host, CPU, memory,
// disks and machine identifiers. Library reads come first; commands and
// well-known files back them up.
package sysinfo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

// Collector writes the system sections of a report.
type Collector struct {
	cfg    *config.Config
	host   shell.Host
	stats  Stats
	logger *slog.Logger
}

type Option func(*Collector)

// WithStats replaces the gopsutil backend.
func WithStats(s Stats) Option {
	return func(c *Collector) {
		c.stats = s
	}
}

func New(cfg *config.Config, host shell.Host, logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		cfg:    cfg,
		host:   host,
		stats:  Gopsutil{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect appends the System, CPU, Memory, Disk and Identifiers sections.
func (c *Collector) Collect(ctx context.Context, rep *report.Report) {
	r := fact.NewResolver(c.host, c.logger, c.cfg.Detect.CommandTimeout)
	snap := newSnapshot(c.stats)

	c.collectSystem(ctx, r, snap, rep.Begin("System"))
	c.collectCPU(ctx, r, snap, rep.Begin("CPU"))
	c.collectMemory(ctx, r, snap, rep.Begin("Memory"))
	for _, path := range c.cfg.System.Paths {
		c.collectDisk(ctx, r, path, rep.Begin("Disk "+path))
	}
	c.collectIdentifiers(ctx, r, snap, rep.Begin("Identifiers"))
}

// lazy calls fn once and remembers the result.
type lazy[T any] struct {
	once sync.Once
	fn   func(context.Context) (T, error)
	v    T
	err  error
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.once.Do(func() {
		l.v, l.err = l.fn(ctx)
	})
	return l.v, l.err
}

// snapshot shares each library read between the facts built from it.
type snapshot struct {
	host   lazy[*host.InfoStat]
	cpu    lazy[[]cpu.InfoStat]
	memory lazy[*mem.VirtualMemoryStat]
}

func newSnapshot(s Stats) *snapshot {
	snap := &snapshot{}
	snap.host.fn = s.Host
	snap.cpu.fn = s.CPU
	snap.memory.fn = s.Memory
	return snap
}

// from builds a function source reading one string out of a lazy value.
func from[T any](name string, l *lazy[T], get func(T) string) fact.Source {
	return fact.Func(name, func(ctx context.Context) (string, error) {
		v, err := l.get(ctx)
		if err != nil {
			return "", err
		}
		if s := get(v); s != "" {
			return s, nil
		}
		return "", fact.ErrNoValue
	})
}
