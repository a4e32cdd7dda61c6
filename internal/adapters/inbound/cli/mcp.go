package cli

import (
	mcpadapter "github.com/imp-refactor/imp-refactor/internal/adapters/inbound/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the imp-refactor MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(a))
	return cmd
}

func newMCPServeCmd(a *app) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start imp-refactor MCP server (stdio)",
		Long: "Start the imp-refactor MCP server using stdio transport. Coding assistants can detect broken " +
			"registry references, preview fix plans, and inspect the registry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = a.project
			}
			s := mcpadapter.NewServer(projectPath, a.evaluator, a.logger)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to --project)")

	return cmd
}
