package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// RegistryOptions selects the registry to evaluate.
type RegistryOptions struct {
	ProjectPath string
	Flake       string
	Name        string
	GitRef      string
	NoCache     bool
}

// RegistryService produces registry snapshots. Snapshots taken at a git
// ref are cached by commit hash since they cannot change.
type RegistryService struct {
	evaluator domain.RegistryEvaluator
	resolver  domain.RevisionResolver
	cache     domain.RegistryCache
	logger    *slog.Logger
}

func NewRegistryService(
	evaluator domain.RegistryEvaluator,
	resolver domain.RevisionResolver,
	cache domain.RegistryCache,
	logger *slog.Logger,
) *RegistryService {
	return &RegistryService{
		evaluator: evaluator,
		resolver:  resolver,
		cache:     cache,
		logger:    orDiscard(logger),
	}
}

// Snapshot evaluates the registry, or loads it from the cache when a
// git ref was requested and was evaluated before.
func (s *RegistryService) Snapshot(ctx context.Context, opts RegistryOptions) (*domain.RegistrySnapshot, error) {
	if opts.Name == "" {
		opts.Name = domain.DefaultRegistryName
	}

	if opts.NoCache && s.cache != nil {
		if err := s.cache.Invalidate(opts.ProjectPath); err != nil {
			return nil, fmt.Errorf("clearing registry cache: %w", err)
		}
	}

	if opts.GitRef == "" {
		s.logger.Info("evaluating registry", "name", opts.Name, "flake", opts.Flake)
		snap, err := s.evaluator.Evaluate(ctx, opts.Flake, opts.Name, "")
		if err != nil {
			return nil, err
		}
		return snap, nil
	}

	rev, err := s.resolver.ResolveRevision(opts.ProjectPath, opts.GitRef)
	if err != nil {
		return nil, domain.NewError(domain.KindRegistry, "", fmt.Sprintf("resolving git ref %q", opts.GitRef), err)
	}

	if s.cache != nil && !opts.NoCache {
		snap, err := s.cache.Load(opts.ProjectPath, opts.Name, rev)
		if err != nil {
			s.logger.Warn("ignoring unreadable registry cache", "rev", rev, "error", err)
		} else if snap != nil {
			s.logger.Info("using cached registry", "name", opts.Name, "git_ref", opts.GitRef, "rev", rev)
			snap.GitRef = opts.GitRef
			return snap, nil
		}
	}

	s.logger.Info("evaluating registry", "name", opts.Name, "git_ref", opts.GitRef, "rev", rev)
	snap, err := s.evaluator.Evaluate(ctx, opts.Flake, opts.Name, rev)
	if err != nil {
		return nil, err
	}
	snap.GitRef = opts.GitRef
	snap.Rev = rev

	if s.cache != nil {
		if err := s.cache.Save(opts.ProjectPath, snap); err != nil {
			s.logger.Warn("could not cache registry", "rev", rev, "error", err)
		}
	}
	return snap, nil
}
