package detect

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/haskel/gpuprobe/internal/fact"
	"github.com/haskel/gpuprobe/internal/report"
	"github.com/haskel/gpuprobe/internal/shell"
)

const defaultCUDAHome = "/usr/local/cuda"

var cudnnDefineRegex = regexp.MustCompile(`(?m)^#define CUDNN_(MAJOR|MINOR|PATCHLEVEL)\s+(\d+)`)

// cudaDetector reports the CUDA toolkit: nvcc, its install root and cuDNN.
type cudaDetector struct{}

func (d *cudaDetector) Name() string    { return "cuda" }
func (d *cudaDetector) Section() string { return "CUDA toolkit" }
func (d *cudaDetector) Role() Role      { return RoleToolchain }

// Tools lists nvcc on PATH followed by nvcc under each candidate root.
func (d *cudaDetector) Tools(h shell.Host) []string {
	tools := []string{"nvcc"}
	for _, root := range cudaRoots(h) {
		tools = append(tools, filepath.Join(root, "bin", "nvcc"))
	}
	return tools
}

func (d *cudaDetector) Collect(ctx context.Context, r *fact.Resolver, s *report.Section) {
	h := r.Host()

	var rootChain fact.Chain
	for _, key := range []string{"CUDA_HOME", "CUDA_PATH"} {
		rootChain = append(rootChain, fact.Env(key))
	}
	rootChain = append(rootChain, fact.Func(defaultCUDAHome, func(context.Context) (string, error) {
		if !h.Exists(defaultCUDAHome) {
			return "", fmt.Errorf("%s: %w", defaultCUDAHome, shell.ErrToolUnavailable)
		}
		return defaultCUDAHome, nil
	}))
	home := r.Resolve(ctx, "home", rootChain)
	s.Emit("home", home)

	var nvccChain fact.Chain
	for _, nvcc := range d.Tools(h) {
		nvccChain = append(nvccChain, fact.Command(nvcc, "--version").
			With(fact.Regex(`release [0-9.]+,[ \t]*V([0-9.]+)`)))
	}
	if home.Present() {
		root := home.Value()
		nvccChain = append(nvccChain,
			fact.File(filepath.Join(root, "version.json")).With(fact.JSONKey("cuda.version")),
			fact.File(filepath.Join(root, "version.txt")).With(fact.Regex(`CUDA Version[ \t]+([0-9.]+)`)),
		)
	}
	s.Emit("nvcc_version", r.Resolve(ctx, "nvcc_version", nvccChain))

	var cudnnChain fact.Chain
	for _, header := range cudnnHeaders(home) {
		path := header
		cudnnChain = append(cudnnChain, fact.Func(path, func(context.Context) (string, error) {
			return readCUDNNVersion(h, path)
		}))
	}
	s.Emit("cudnn_version", r.Resolve(ctx, "cudnn_version", cudnnChain))
}

// cudaRoots returns the toolkit roots to look under, in priority order.
func cudaRoots(h shell.Host) []string {
	var roots []string
	for _, key := range []string{"CUDA_HOME", "CUDA_PATH"} {
		if v := h.Getenv(key); v != "" {
			roots = append(roots, v)
		}
	}
	return append(roots, defaultCUDAHome)
}

func cudnnHeaders(home fact.Fact) []string {
	var headers []string
	if home.Present() {
		headers = append(headers, filepath.Join(home.Value(), "include", "cudnn_version.h"))
	}
	return append(headers,
		"/usr/include/cudnn_version.h",
		"/usr/include/x86_64-linux-gnu/cudnn_version.h",
	)
}

// readCUDNNVersion assembles "major.minor.patch" from the defines in a
// cudnn_version.h header.
func readCUDNNVersion(h shell.Host, path string) (string, error) {
	if !h.Exists(path) {
		return "", fmt.Errorf("%s: %w", path, shell.ErrToolUnavailable)
	}
	data, err := h.ReadFile(path)
	if err != nil {
		return "", err
	}
	parts := map[string]string{}
	for _, m := range cudnnDefineRegex.FindAllStringSubmatch(string(data), -1) {
		if _, seen := parts[m[1]]; !seen {
			parts[m[1]] = m[2]
		}
	}
	if parts["MAJOR"] == "" || parts["MINOR"] == "" {
		return "", fact.ErrNoValue
	}
	version := parts["MAJOR"] + "." + parts["MINOR"]
	if p := parts["PATCHLEVEL"]; p != "" {
		version += "." + p
	}
	return version, nil
}
