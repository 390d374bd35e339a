//go:build !linux || !cgo

package detect

// DefaultNVML is nil without cgo on linux; the NVIDIA detector then relies
// on nvidia-smi alone.
var DefaultNVML NVMLQuery
