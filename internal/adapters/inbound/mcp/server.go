// Package mcp exposes detection, planning, and registry inspection as
// Model Context Protocol tools.
package mcp

import (
	"log/slog"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with all imp-refactor tools and
// resources registered. projectPath is the directory holding
// .imp-refactor.yaml. A nil evaluator runs the real nix binary.
func NewServer(projectPath string, evaluator domain.RegistryEvaluator, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"imp-refactor",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	ts := newToolset(projectPath, evaluator, logger)
	registerTools(s, ts)
	registerResources(s, ts)

	return s
}
