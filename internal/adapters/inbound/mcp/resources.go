package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/config"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources registers the read-only project resources.
func registerResources(s *server.MCPServer, ts *toolset) {
	// 1. imp://config - effective project configuration
	s.AddResource(
		mcplib.NewResource(
			"imp://config",
			"Project Config",
			mcplib.WithResourceDescription("Effective .imp-refactor.yaml configuration, defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		ts.handleConfigResource,
	)

	// 2. imp://history - apply log
	s.AddResource(
		mcplib.NewResource(
			"imp://history",
			"Apply History",
			mcplib.WithResourceDescription("Previous apply runs recorded for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		ts.handleHistoryResource,
	)
}

func (ts *toolset) handleConfigResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	cfg, err := config.New().Load(ts.projectPath)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, cfg)
}

func (ts *toolset) handleHistoryResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	entries, err := ts.apply.History(ts.projectPath)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
