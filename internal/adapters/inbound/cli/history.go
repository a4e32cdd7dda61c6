package cli

import (
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous apply runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.applyService(a.detectService()).History(a.project)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the history as JSON")

	return cmd
}
