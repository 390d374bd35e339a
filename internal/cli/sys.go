package cli

import (
	"github.com/spf13/cobra"

	"github.com/haskel/gpuprobe/internal/config"
	"github.com/haskel/gpuprobe/internal/report"
)

// NewSysCommand creates the sys command.
func NewSysCommand(deps *Deps, root *rootFlags) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "sys",
		Short: "Report general system information",
		Long:  `Report the host, CPU, memory, disks and machine identifiers.`,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := loadConfig(deps, root, func(cfg *config.Config) {
				if verbose {
					cfg.Output.Verbose = true
				}
			})
			if err != nil {
				return err
			}

			rep := report.New()
			run.collectSystem(cmd.Context(), rep)
			return run.render(rep)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show why values are unavailable and log debug output")

	return cmd
}
