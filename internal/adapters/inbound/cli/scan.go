package cli

import (
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		flags      fileFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List files that would be scanned without processing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			opts := application.ScanOptionsFromConfig(a.project, cfg)
			flags.apply(cmd, &opts)

			files, err := a.detectService().Files(opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				if files == nil {
					files = []string{}
				}
				return writeJSON(cmd, files)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderFileList(files))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the file list as JSON")

	return cmd
}
