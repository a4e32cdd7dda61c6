package application

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// ScanOptions controls which files are scanned and which registry they are
// checked against.
type ScanOptions struct {
	ProjectPath       string
	Paths             []string
	Exclude           []string
	NoDefaultExcludes bool
	RegistryName      string
	Flake             string
	GitRef            string
	Renames           domain.RenameRules
	Jobs              int
	NoCache           bool
}

// ScanOptionsFromConfig seeds options from the project configuration.
// Relative paths in the config are resolved against projectPath.
// Command-line overrides are applied on top by the caller.
func ScanOptionsFromConfig(projectPath string, cfg domain.ProjectConfig) ScanOptions {
	cfg = cfg.WithDefaults()
	paths := make([]string, len(cfg.Paths))
	for i, p := range cfg.Paths {
		paths[i] = inProject(projectPath, p)
	}
	flake := cfg.Flake
	if !strings.Contains(flake, ":") {
		flake = inProject(projectPath, flake)
	}
	return ScanOptions{
		ProjectPath:       projectPath,
		Paths:             paths,
		Exclude:           append([]string(nil), cfg.Exclude...),
		NoDefaultExcludes: cfg.NoDefaultExcludes,
		RegistryName:      cfg.RegistryName,
		Flake:             flake,
		GitRef:            cfg.GitRef,
		Renames:           cfg.RenameRules(),
		Jobs:              cfg.Jobs,
	}
}

func inProject(projectPath, p string) string {
	if projectPath == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectPath, p)
}

// RegistryOptions returns the registry selection part of o.
func (o ScanOptions) RegistryOptions() RegistryOptions {
	return RegistryOptions{
		ProjectPath: o.ProjectPath,
		Flake:       o.Flake,
		Name:        o.RegistryName,
		GitRef:      o.GitRef,
		NoCache:     o.NoCache,
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
