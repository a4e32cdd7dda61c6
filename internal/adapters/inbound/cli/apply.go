package cli

import (
	"fmt"
	"io"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/prompt"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/spf13/cobra"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		flags       scanFlags
		write       bool
		interactive bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply suggested renames to files",
		Long: "Rewrite every broken registry reference that has a suggestion. Without --write the " +
			"changes are only printed. --interactive asks before each file and implies --write.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a)
			if err != nil {
				return err
			}

			detect := flags.detectService(cmd, a)
			svc := a.applyService(detect)

			plan, err := svc.Plan(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}

			out := cmd.OutOrStdout()
			shouldWrite := write || interactive

			if !shouldWrite {
				if jsonOutput {
					return writeJSON(cmd, plan)
				}
				fmt.Fprint(out, tui.RenderPlan(plan, tui.PlanPreview))
				return nil
			}
			if plan.ChangeCount() == 0 {
				fmt.Fprint(out, tui.RenderPlan(plan, tui.PlanWrite))
				return nil
			}

			applyOpts := application.ApplyOptions{ProjectPath: opts.ProjectPath}
			if interactive {
				fmt.Fprint(out, tui.RenderPlanSummary(plan))
				p := prompt.New(a.input(cmd), out)
				applyOpts.Decide = func(fp domain.FilePlan) (domain.FileAction, error) {
					fmt.Fprint(out, tui.RenderFilePlan(fp, plan.RegistryName, tui.PlanInteractive))
					return p.Decide(fp)
				}
			} else {
				fmt.Fprint(out, tui.RenderPlan(plan, tui.PlanWrite))
			}

			report, err := svc.Apply(cmd.Context(), plan, applyOpts)
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, tui.RenderApplyReport(report))
			}

			if len(report.Failed) > 0 {
				return fmt.Errorf("%d file(s) could not be rewritten", len(report.Failed))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write changes to disk")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Confirm each file's changes before applying")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the plan (or the apply report with --write) as JSON")

	return cmd
}

func (a *app) input(cmd *cobra.Command) io.Reader {
	if a.stdin != nil {
		return a.stdin
	}
	return cmd.InOrStdin()
}
