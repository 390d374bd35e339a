package cli

import (
	"github.com/spf13/cobra"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/report"
)

type gpuFlags struct {
	gpuOnly     bool
	sysOnly     bool
	noPython    bool
	verbose     bool
	interpreter string
}

// NewGPUCommand creates the gpu command.
func NewGPUCommand(deps *Deps, root *rootFlags) *cobra.Command {
	flags := &gpuFlags{}

	cmd := &cobra.Command{
		Use:   "gpu",
		Short: "Report GPUs, vendor tools and the CUDA/Python stack",
		Long: `Detect GPUs and accelerator tooling (NVIDIA, AMD, OpenCL, the platform's
native GPU tools, PCI as a last resort), the CUDA toolkit and Python ML
frameworks, followed by general system information.

Examples:
  gpuprobe gpu                   # GPU and system report
  gpuprobe gpu --gpu-only        # skip system information
  gpuprobe gpu --no-python       # do not start a Python interpreter
  gpuprobe gpu --py .venv/bin/python`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.gpuOnly && flags.sysOnly {
				return usageErrorf("--gpu-only and --sys-only cannot be used together")
			}

			run, err := loadConfig(deps, root, func(cfg *config.Config) {
				if flags.verbose {
					cfg.Output.Verbose = true
				}
				if flags.noPython {
					cfg.Python.Enabled = false
				}
				if flags.interpreter != "" {
					cfg.Python.Interpreter = flags.interpreter
				}
			})
			if err != nil {
				return err
			}

			rep := report.New()
			if !flags.sysOnly {
				run.detectGPU(cmd.Context(), rep)
			}
			if !flags.gpuOnly {
				run.collectSystem(cmd.Context(), rep)
			}
			return run.render(rep)
		},
	}

	cmd.Flags().BoolVar(&flags.gpuOnly, "gpu-only", false, "report GPU information only")
	cmd.Flags().BoolVar(&flags.sysOnly, "sys-only", false, "report system information only")
	cmd.Flags().BoolVar(&flags.noPython, "no-python", false, "skip the Python framework checks")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "show why values are unavailable and log debug output")
	cmd.Flags().StringVar(&flags.interpreter, "py", "", "Python interpreter for framework checks")

	return cmd
}
