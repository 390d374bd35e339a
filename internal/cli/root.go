// Package cli wires the gpuprobe commands. Commands read flags into a
// config.Config and hand it to the detection and system collectors; nothing
// is kept in package state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/gpuprobe/internal/detect"
	"github.com/haskel/gpuprobe/internal/shell"
	"github.com/haskel/gpuprobe/internal/sysinfo"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitConfig = 1
	ExitUsage  = 2
)

// Deps are the collaborators a command runs against.
type Deps struct {
	Host    shell.Host
	Stats   sysinfo.Stats
	NVML    detect.NVMLQuery
	Stdout  io.Writer
	Stderr  io.Writer
	Version string
}

// DefaultDeps runs against the local machine.
func DefaultDeps(version string) *Deps {
	return &Deps{
		Host:    shell.NewLocal(),
		Stats:   sysinfo.Gopsutil{},
		NVML:    detect.DefaultNVML,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Version: version,
	}
}

// UsageError is a bad or conflicting command line.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// ConfigError is a configuration file or environment that failed to load.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type rootFlags struct {
	configFile string
	color      string
}

// NewRootCommand creates the root command for the gpuprobe CLI
func NewRootCommand(deps *Deps) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "gpuprobe",
		Short: "GPU and system diagnostics",
		Long: `gpuprobe inspects the local machine for GPUs, vendor tooling and the CUDA
and Python ML stack, and reports general system information.

Every fact is gathered best-effort from several sources; anything that
cannot be determined is reported as "unavailable".`,
		Version:       deps.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{msg: err.Error()}
	})

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (YAML or TOML)")
	cmd.PersistentFlags().StringVar(&flags.color, "color", "", "colorize output: auto, always or never")

	cmd.AddCommand(NewGPUCommand(deps, flags))
	cmd.AddCommand(NewSysCommand(deps, flags))

	return cmd
}

// Run executes the command line and returns the process exit code. Errors
// are printed to stderr as a single line.
func Run(deps *Deps, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(deps)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(deps.Stderr, "gpuprobe: %v\n", err)

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitConfig
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
