package domain

import (
	"context"

	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
)

// FileCollector lists the source files to scan under the given roots.
type FileCollector interface {
	Collect(roots, exclude []string, defaultExcludes bool) ([]string, error)
}

// SourceParser turns file text into a syntax tree. It never fails;
// syntax errors are reported on the returned tree.
type SourceParser interface {
	Parse(src []byte) *syntax.Tree
}

// RegistryEvaluator produces the registry tree of a flake, optionally at a commit.
type RegistryEvaluator interface {
	Evaluate(ctx context.Context, flake, name, rev string) (*RegistrySnapshot, error)
}

// RevisionResolver maps git refs to commit hashes.
type RevisionResolver interface {
	ResolveRevision(repoPath, ref string) (string, error)
	CommitHash(repoPath string) (string, error)
}

// RegistryCache stores snapshots evaluated at immutable commits.
type RegistryCache interface {
	Load(projectPath, name, rev string) (*RegistrySnapshot, error)
	Save(projectPath string, snap *RegistrySnapshot) error
	Invalidate(projectPath string) error
}

// FileStore reads and persists source files.
type FileStore interface {
	Read(path string) ([]byte, error)
	WriteAtomic(path string, data []byte) error
}

// ApplyHistory records apply runs.
type ApplyHistory interface {
	Save(projectPath string, entry ApplyEntry) error
	Load(projectPath string) ([]ApplyEntry, error)
}

// ConfigLoader loads the project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}
