//go:build linux && cgo

package detect

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// DefaultNVML is the NVML query used when none is configured.
var DefaultNVML NVMLQuery = queryNVML

func queryNVML() (NVMLSnapshot, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return NVMLSnapshot{}, fmt.Errorf("initialize NVML: %v: %w", nvml.ErrorString(ret), ErrNVMLUnavailable)
	}
	defer nvml.Shutdown()

	var snap NVMLSnapshot
	if v, ret := nvml.SystemGetDriverVersion(); ret == nvml.SUCCESS {
		snap.DriverVersion = v
	}
	if v, ret := nvml.SystemGetCudaDriverVersion(); ret == nvml.SUCCESS {
		snap.CUDADriverVersion = fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return snap, fmt.Errorf("get GPU count: %v", nvml.ErrorString(ret))
	}
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		var d NVMLDevice
		if d.Name, ret = device.GetName(); ret != nvml.SUCCESS {
			continue
		}
		if mem, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
			d.Total, d.Used, d.Free = mem.Total, mem.Used, mem.Free
		}
		snap.Devices = append(snap.Devices, d)
	}
	return snap, nil
}
