package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	verbose   int
	quiet     bool
	project   string
	logger    *slog.Logger
	evaluator domain.RegistryEvaluator
	stdin     io.Reader
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imp-refactor",
		Short: "Detect and fix broken registry references in Nix projects",
		Long: "imp-refactor finds `registry.x.y` selections in .nix files that no longer exist in the flake's " +
			"registry attribute, suggests where they moved, and rewrites them in place.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), levelFromVerbosity(a.verbose, a.quiet))
		},
	}

	cmd.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all log output")
	cmd.PersistentFlags().StringVarP(&a.project, "project", "C", ".", "Project directory holding .imp-refactor.yaml")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDetectCmd(a))
	cmd.AddCommand(newApplyCmd(a))
	cmd.AddCommand(newRegistryCmd(a))
	cmd.AddCommand(newScanCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	return cmd
}

// NewRootCmdForTest returns the root command with the registry evaluator
// replaced. A nil evaluator runs the real nix binary.
func NewRootCmdForTest(evaluator domain.RegistryEvaluator) *cobra.Command {
	return newRootCmd(&app{evaluator: evaluator})
}

func Execute() error {
	err := newRootCmd(&app{stdin: os.Stdin}).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}
