package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/haskel/gpuprobe/internal/shell/shelltest"
)

const lspciOutput = `00:00.0 Host bridge: Intel Corporation Device 9b33 (rev 05)
01:00.0 VGA compatible controller: NVIDIA Corporation TU104GL [Tesla T4] (rev a1)
`

var errNoStats = errors.New("no stats")

// noStats fails every read so system facts come from the fake host only.
type noStats struct{}

func (noStats) Host(context.Context) (*host.InfoStat, error)           { return nil, errNoStats }
func (noStats) CPU(context.Context) ([]cpu.InfoStat, error)            { return nil, errNoStats }
func (noStats) Cores(context.Context, bool) (int, error)               { return 0, errNoStats }
func (noStats) Memory(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errNoStats }
func (noStats) Swap(context.Context) (*mem.SwapMemoryStat, error)      { return nil, errNoStats }
func (noStats) Disk(context.Context, string) (*disk.UsageStat, error)  { return nil, errNoStats }
func (noStats) Processes(context.Context) (int, error)                 { return 0, errNoStats }

func testDeps(t *testing.T, h *shelltest.Host) (*Deps, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("GPUPROBE_PLATFORM", "linux")

	var stdout, stderr bytes.Buffer
	return &Deps{
		Host:    h,
		Stats:   noStats{},
		Stdout:  &stdout,
		Stderr:  &stderr,
		Version: "1.2.3",
	}, &stdout, &stderr
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestNewRootCommand(t *testing.T) {
	deps, _, _ := testDeps(t, shelltest.New())
	cmd := NewRootCommand(deps)

	if cmd.Use != "gpuprobe" {
		t.Errorf("expected Use gpuprobe, got %q", cmd.Use)
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("expected usage and errors silenced")
	}

	expected := map[string]bool{"gpu": false, "sys": false}
	for _, sub := range cmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRun_ConflictingModes(t *testing.T) {
	h := shelltest.New().Command("lspci", lspciOutput)
	deps, stdout, stderr := testDeps(t, h)

	code := Run(deps, []string{"gpu", "--gpu-only", "--sys-only"})

	if code != ExitUsage {
		t.Errorf("expected exit %d, got %d", ExitUsage, code)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no report, got %q", stdout.String())
	}
	if got := lines(stderr.String()); len(got) != 1 || got[0] == "" {
		t.Errorf("expected a single error line, got %q", stderr.String())
	}
	if len(h.Calls) != 0 {
		t.Errorf("expected no probing, got %v", h.Calls)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"gpu", "--bogus"}},
		{"unknown command", []string{"frobnicate"}},
		{"extra argument", []string{"sys", "now"}},
		{"invalid color", []string{"--color", "sometimes", "sys"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, stdout, stderr := testDeps(t, shelltest.New())

			if code := Run(deps, tt.args); code != ExitUsage {
				t.Errorf("expected exit %d, got %d", ExitUsage, code)
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no report, got %q", stdout.String())
			}
			if got := lines(stderr.String()); len(got) != 1 {
				t.Errorf("expected a single error line, got %q", stderr.String())
			}
		})
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	deps, stdout, stderr := testDeps(t, shelltest.New())

	code := Run(deps, []string{"--config", "/nonexistent/gpuprobe.yaml", "sys"})

	if code != ExitConfig {
		t.Errorf("expected exit %d, got %d", ExitConfig, code)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no report, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "gpuprobe.yaml") {
		t.Errorf("expected the config path in the error, got %q", stderr.String())
	}
}

func TestRun_GPUOnly(t *testing.T) {
	h := shelltest.New().Command("lspci", lspciOutput).Tool("python3")
	deps, stdout, _ := testDeps(t, h)

	if code := Run(deps, []string{"gpu", "--gpu-only", "--no-python"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	out := stdout.String()
	if !strings.Contains(out, "== PCI display devices ==") {
		t.Errorf("expected PCI section, got:\n%s", out)
	}
	if !strings.Contains(out, "NVIDIA Corporation TU104GL [Tesla T4] (rev a1)") {
		t.Errorf("expected device row, got:\n%s", out)
	}
	if strings.Contains(out, "== System ==") {
		t.Errorf("expected no system sections with --gpu-only, got:\n%s", out)
	}
	if strings.Contains(out, "no known GPU tool") {
		t.Errorf("expected no warning when PCI finds a device, got:\n%s", out)
	}
	if h.Ran("python3") {
		t.Errorf("expected python skipped with --no-python, got calls %v", h.Calls)
	}
}

func TestRun_GPUSysOnly(t *testing.T) {
	h := shelltest.New().Command("lspci", lspciOutput)
	deps, stdout, _ := testDeps(t, h)

	if code := Run(deps, []string{"gpu", "--sys-only"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	out := stdout.String()
	if strings.Contains(out, "PCI display devices") {
		t.Errorf("expected no GPU sections with --sys-only, got:\n%s", out)
	}
	if !strings.Contains(out, "== System ==") {
		t.Errorf("expected system sections, got:\n%s", out)
	}
	if h.Ran("lspci") {
		t.Error("expected lspci not to run")
	}
}

func TestRun_GPUFullReportOrder(t *testing.T) {
	h := shelltest.New().Command("lspci", lspciOutput)
	deps, stdout, _ := testDeps(t, h)

	if code := Run(deps, []string{"gpu", "--no-python"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	out := stdout.String()
	pci := strings.Index(out, "== PCI display devices ==")
	sys := strings.Index(out, "== System ==")
	if pci < 0 || sys < 0 || pci > sys {
		t.Errorf("expected GPU sections before system sections, got:\n%s", out)
	}
}

func TestRun_PythonInterpreterFlag(t *testing.T) {
	h := shelltest.New().Tool("/opt/venv/bin/python")
	deps, _, _ := testDeps(t, h)

	if code := Run(deps, []string{"gpu", "--gpu-only", "--py", "/opt/venv/bin/python"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !h.Ran("/opt/venv/bin/python -c") {
		t.Errorf("expected the configured interpreter to run, got calls %v", h.Calls)
	}
}

func TestRun_Sys(t *testing.T) {
	h := shelltest.New().
		Command("hostname", "node-7\n").
		Command("lspci", lspciOutput)
	deps, stdout, _ := testDeps(t, h)

	if code := Run(deps, []string{"sys"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}

	out := stdout.String()
	for _, section := range []string{"== System ==", "== CPU ==", "== Memory ==", "== Disk / ==", "== Identifiers =="} {
		if !strings.Contains(out, section) {
			t.Errorf("expected %s, got:\n%s", section, out)
		}
	}
	if !strings.Contains(out, "  hostname: node-7\n") {
		t.Errorf("expected hostname row, got:\n%s", out)
	}
	if h.Ran("lspci") {
		t.Error("expected no GPU detection for sys")
	}
}

func TestRun_VerboseShowsMissReason(t *testing.T) {
	deps, stdout, _ := testDeps(t, shelltest.New())

	if code := Run(deps, []string{"sys", "--verbose"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "unavailable (") {
		t.Errorf("expected miss reasons in verbose output, got:\n%s", stdout.String())
	}
}

func TestRun_ColorNeverIsPlain(t *testing.T) {
	deps, stdout, _ := testDeps(t, shelltest.New().Command("lspci", lspciOutput))

	if code := Run(deps, []string{"--color", "never", "gpu", "--gpu-only", "--no-python"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.Contains(stdout.String(), "\x1b[") {
		t.Errorf("expected no escape sequences, got %q", stdout.String())
	}
}

func TestRun_Idempotent(t *testing.T) {
	var outputs []string
	for i := 0; i < 2; i++ {
		deps, stdout, _ := testDeps(t, shelltest.New().Command("lspci", lspciOutput))
		if code := Run(deps, []string{"gpu", "--gpu-only", "--no-python"}); code != ExitOK {
			t.Fatalf("expected exit 0, got %d", code)
		}
		outputs = append(outputs, stdout.String())
	}
	if outputs[0] != outputs[1] {
		t.Errorf("expected identical output, got:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

func TestRun_Version(t *testing.T) {
	deps, stdout, _ := testDeps(t, shelltest.New())

	if code := Run(deps, []string{"--version"}); code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "1.2.3") {
		t.Errorf("expected version in output, got %q", stdout.String())
	}
}
