package cli

import (
	"encoding/json"
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	var (
		flags      scanFlags
		jsonOutput bool
		plain      bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report broken registry references with suggested fixes",
		Long: "Scan .nix files for registry selections that do not exist in the evaluated registry. " +
			"Each broken reference gets a suggestion (from --rename rules or a unique matching leaf) or a reason.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a)
			if err != nil {
				return err
			}

			result, err := flags.detectService(cmd, a).Detect(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			switch {
			case jsonOutput:
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			case plain:
				for _, b := range result.Broken {
					fmt.Fprintln(cmd.OutOrStdout(), tui.FormatBroken(b))
				}
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderDetection(result, a.verbose > 0))
			}

			if ciMode && result.Diagnostics.BrokenRefs > 0 {
				return fmt.Errorf("%d broken registry reference(s)", result.Diagnostics.BrokenRefs)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of human-readable output")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print one uncoloured line per broken reference")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit non-zero if any broken reference exists")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
