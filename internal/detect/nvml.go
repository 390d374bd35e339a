package detect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/shell"
)

// NVMLDevice is one GPU as reported by NVML. Memory is in bytes.
type NVMLDevice struct {
	Name  string
	Total uint64
	Used  uint64
	Free  uint64
}

// NVMLSnapshot is everything the NVIDIA detector reads from NVML.
type NVMLSnapshot struct {
	DriverVersion string
	// CUDADriverVersion is formatted as "major.minor".
	CUDADriverVersion string
	Devices           []NVMLDevice
}

// NVMLQuery reads a snapshot from the NVIDIA management library.
type NVMLQuery func() (NVMLSnapshot, error)

// ErrNVMLUnavailable is returned when the binary was built without NVML
// support or the library cannot be loaded.
var ErrNVMLUnavailable = fmt.Errorf("nvml: %w", shell.ErrToolUnavailable)

// table renders devices as nvidia-smi CSV so the same column rules apply to
// both sources.
func (s NVMLSnapshot) table() string {
	const mib = 1 << 20
	var b strings.Builder
	for _, d := range s.Devices {
		if d.Total == 0 {
			fmt.Fprintf(&b, "%s, [N/A], [N/A], [N/A]\n", d.Name)
			continue
		}
		fmt.Fprintf(&b, "%s, %d MiB, %d MiB, %d MiB\n", d.Name, d.Total/mib, d.Used/mib, d.Free/mib)
	}
	return b.String()
}

// nvmlReader queries NVML at most once per detector run.
type nvmlReader struct {
	query NVMLQuery
	once  sync.Once
	snap  NVMLSnapshot
	err   error
}

func (n *nvmlReader) read() (NVMLSnapshot, error) {
	if n.query == nil {
		return NVMLSnapshot{}, ErrNVMLUnavailable
	}
	n.once.Do(func() {
		n.snap, n.err = n.query()
	})
	return n.snap, n.err
}

func (n *nvmlReader) field(get func(NVMLSnapshot) string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		snap, err := n.read()
		if err != nil {
			return "", err
		}
		if v := get(snap); v != "" {
			return v, nil
		}
		return "", fact.ErrNoValue
	}
}
