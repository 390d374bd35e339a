package detect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
)

// device is what a detector knows about one GPU.
type device struct {
	name  fact.Fact
	total fact.Fact
	used  fact.Fact
	free  fact.Fact
}

// String renders "name | mem: total, free: free".
func (d device) String() string {
	return fmt.Sprintf("%s | mem: %s, free: %s",
		d.name.Or(report.Unavailable),
		d.total.Or(report.Unavailable),
		d.free.Or(report.Unavailable),
	)
}

// resolveFree resolves free memory from the given chain, falling back to
// total minus used.
func resolveFree(ctx context.Context, r *fact.Resolver, d *device, chain fact.Chain) {
	total, used := d.total, d.used
	chain = append(chain, fact.Derived("total-used", func() fact.Fact {
		return fact.Subtract("free", total, used)
	}))
	d.free = r.Resolve(ctx, "free", chain)
}

// emitDevices writes a gpu_count row and one "gpu N" row per device.
func emitDevices(s *report.Section, devices []device) {
	s.Emit("gpu_count", fact.Of("gpu_count", strconv.Itoa(len(devices))))
	for i, d := range devices {
		label := "gpu " + strconv.Itoa(i)
		s.Emit(label, fact.Of(label, d.String()))
	}
}

// emitRows writes one row per value of f, labelled "prefix N", or a single
// absent row labelled plural when f has no value.
func emitRows(s *report.Section, prefix, plural string, f fact.Fact) {
	if !f.Present() {
		s.Emit(plural, f)
		return
	}
	for i, v := range f.Values() {
		label := prefix + " " + strconv.Itoa(i)
		s.Emit(label, fact.Of(label, v))
	}
}

func notHeader(header string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		return v, !strings.EqualFold(v, header)
	}
}
