package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/cache"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/config"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/fsstore"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/gitinfo"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/history"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	registryAdapter "github.com/imp-refactor/imp-refactor/internal/adapters/outbound/registry"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/scanner"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolset holds the services shared by all handlers.
type toolset struct {
	projectPath string
	registry    *application.RegistryService
	detect      *application.DetectService
	apply       *application.ApplyService
}

func newToolset(projectPath string, evaluator domain.RegistryEvaluator, logger *slog.Logger) *toolset {
	if evaluator == nil {
		evaluator = registryAdapter.New()
	}
	store := fsstore.New()
	registry := application.NewRegistryService(evaluator, gitinfo.New(), cache.New(), logger)
	detect := application.NewDetectService(scanner.New(), nixparser.New(), store, registry, logger)
	return &toolset{
		projectPath: projectPath,
		registry:    registry,
		detect:      detect,
		apply:       application.NewApplyService(detect, store, history.New(), gitinfo.New(), logger),
	}
}

// registerTools registers all imp-refactor MCP tools on the given server.
func registerTools(s *server.MCPServer, ts *toolset) {
	scanArgs := []mcplib.ToolOption{
		mcplib.WithString("paths", mcplib.Description("Comma-separated paths to scan (default: config paths)")),
		mcplib.WithString("exclude", mcplib.Description("Comma-separated glob patterns to exclude")),
	}
	registryArgs := []mcplib.ToolOption{
		mcplib.WithString("registry_name", mcplib.Description("Registry attribute name in flake outputs")),
		mcplib.WithString("git_ref", mcplib.Description("Git ref to evaluate the registry at (e.g. HEAD^)")),
	}
	renameArgs := []mcplib.ToolOption{
		mcplib.WithString("renames", mcplib.Description("Comma-separated old=new rename rules; longest prefix wins")),
	}

	// 1. imp_detect
	s.AddTool(
		mcplib.NewTool("imp_detect", toolOptions(
			"Report broken registry references with suggestions or reasons, plus diagnostics, as JSON",
			scanArgs, registryArgs, renameArgs)...),
		ts.handleDetect,
	)

	// 2. imp_plan
	s.AddTool(
		mcplib.NewTool("imp_plan", toolOptions(
			"Return the fix plan (every suggested rewrite, grouped by file) without changing any file",
			scanArgs, registryArgs, renameArgs)...),
		ts.handlePlan,
	)

	// 3. imp_registry
	s.AddTool(
		mcplib.NewTool("imp_registry", toolOptions(
			"Return the sorted list of valid dotted registry paths",
			registryArgs)...),
		ts.handleRegistry,
	)

	// 4. imp_scan
	s.AddTool(
		mcplib.NewTool("imp_scan", toolOptions(
			"List the .nix files a detect run would scan",
			scanArgs)...),
		ts.handleScan,
	)
}

func toolOptions(description string, groups ...[]mcplib.ToolOption) []mcplib.ToolOption {
	opts := []mcplib.ToolOption{mcplib.WithDescription(description)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return opts
}

// options merges the project config with the request arguments.
func (ts *toolset) options(request mcplib.CallToolRequest) (application.ScanOptions, error) {
	cfg, err := config.New().Load(ts.projectPath)
	if err != nil {
		return application.ScanOptions{}, err
	}
	opts := application.ScanOptionsFromConfig(ts.projectPath, cfg)

	if paths := splitList(request.GetString("paths", "")); len(paths) > 0 {
		opts.Paths = paths
	}
	opts.Exclude = append(opts.Exclude, splitList(request.GetString("exclude", ""))...)
	if name := request.GetString("registry_name", ""); name != "" {
		opts.RegistryName = name
	}
	if ref := request.GetString("git_ref", ""); ref != "" {
		opts.GitRef = ref
	}
	if renames := splitList(request.GetString("renames", "")); len(renames) > 0 {
		rules, err := domain.ParseRenames(renames)
		if err != nil {
			return application.ScanOptions{}, err
		}
		opts.Renames = opts.Renames.Merge(rules)
	}
	return opts, nil
}

func (ts *toolset) handleDetect(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	opts, err := ts.options(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	result, err := ts.detect.Detect(ctx, opts)
	if err != nil {
		return errorResult(fmt.Sprintf("detection failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (ts *toolset) handlePlan(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	opts, err := ts.options(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	plan, err := ts.apply.Plan(ctx, opts)
	if err != nil {
		return errorResult(fmt.Sprintf("planning failed: %v", err)), nil
	}
	return jsonResult(plan)
}

func (ts *toolset) handleRegistry(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	opts, err := ts.options(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	snap, err := ts.registry.Snapshot(ctx, opts.RegistryOptions())
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating registry: %v", err)), nil
	}
	return jsonResult(snap.ValidPaths().Sorted())
}

func (ts *toolset) handleScan(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	opts, err := ts.options(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	files, err := ts.detect.Files(opts)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if files == nil {
		files = []string{}
	}
	return jsonResult(files)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error result with the given message.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
