package cli

import (
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/spf13/cobra"
)

func newRegistryCmd(a *app) *cobra.Command {
	var (
		flags      registryFlags
		depth      int
		jsonOutput bool
		flat       bool
	)

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Print the registry's attribute tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			opts := application.ScanOptionsFromConfig(a.project, cfg)
			flags.apply(cmd, &opts)

			snap, err := a.registryService().Snapshot(cmd.Context(), opts.RegistryOptions())
			if err != nil {
				return fmt.Errorf("evaluating registry: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, snap.ValidPaths().Sorted())
			}
			if flat {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPathList(snap.ValidPaths()))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRegistryTree(snap, depth))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum tree depth to display (0 = unlimited)")
	cmd.Flags().BoolVar(&flat, "flat", false, "Print every valid dotted path, one per line")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the sorted list of valid dotted paths as JSON")

	return cmd
}
