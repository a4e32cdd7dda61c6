package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/imp-refactor/imp-refactor/internal/domain/rewrite"
)

// DecideFunc chooses what to do with one file of a plan.
type DecideFunc func(domain.FilePlan) (domain.FileAction, error)

// ApplyAll accepts every file.
func ApplyAll(domain.FilePlan) (domain.FileAction, error) { return domain.ActionApply, nil }

// ApplyService turns suggestions into a fix plan and writes it to disk.
type ApplyService struct {
	detect   *DetectService
	store    domain.FileStore
	history  domain.ApplyHistory
	resolver domain.RevisionResolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewApplyService(
	detect *DetectService,
	store domain.FileStore,
	history domain.ApplyHistory,
	resolver domain.RevisionResolver,
	logger *slog.Logger,
) *ApplyService {
	return &ApplyService{
		detect:   detect,
		store:    store,
		history:  history,
		resolver: resolver,
		logger:   orDiscard(logger),
		now:      time.Now,
	}
}

// Plan collects every broken reference that has a suggestion, grouped by
// file and sorted by path.
func (s *ApplyService) Plan(ctx context.Context, opts ScanOptions) (*domain.FixPlan, error) {
	if opts.RegistryName == "" {
		opts.RegistryName = domain.DefaultRegistryName
	}
	run, err := s.detect.scan(ctx, opts)
	if err != nil {
		return nil, err
	}

	plan := &domain.FixPlan{
		RegistryName: opts.RegistryName,
		GitRef:       opts.GitRef,
		Files:        []domain.FilePlan{},
		FileErrors:   run.fileErrors,
	}
	for _, f := range run.files {
		if f.err != nil {
			continue
		}
		var changes []domain.Change
		for _, ref := range f.refs {
			if run.analyzer.IsValid(ref.Path) {
				continue
			}
			if newPath, ok := run.analyzer.Suggest(ref.Path); ok {
				changes = append(changes, domain.Change{Reference: ref, NewPath: newPath})
			}
		}
		if len(changes) > 0 {
			plan.Files = append(plan.Files, domain.FilePlan{Path: f.path, Hash: f.hash, Changes: changes})
		}
	}
	sort.Slice(plan.Files, func(i, j int) bool { return plan.Files[i].Path < plan.Files[j].Path })

	s.logger.Info("plan ready", "files", len(plan.Files), "changes", plan.ChangeCount())
	return plan, nil
}

// ApplyOptions configures a write run.
type ApplyOptions struct {
	ProjectPath string
	// Decide is asked about each file in turn. Nil applies everything.
	Decide DecideFunc
}

// Apply rewrites the files of plan. Each file is re-read and compared to
// the hash recorded in the plan; files changed since planning are not
// touched. Failures are reported per file and do not stop the run.
func (s *ApplyService) Apply(ctx context.Context, plan *domain.FixPlan, opts ApplyOptions) (*domain.ApplyReport, error) {
	decide := opts.Decide
	if decide == nil {
		decide = ApplyAll
	}

	report := &domain.ApplyReport{Applied: []domain.AppliedFile{}}
	entry := domain.ApplyEntry{RegistryName: plan.RegistryName, GitRef: plan.GitRef}

	for _, fp := range plan.Files {
		if err := ctx.Err(); err != nil {
			s.record(opts.ProjectPath, entry)
			return report, err
		}

		action, err := decide(fp)
		if err != nil {
			s.record(opts.ProjectPath, entry)
			return report, fmt.Errorf("deciding on %s: %w", fp.Path, err)
		}
		if action == domain.ActionAbort {
			report.Aborted = true
			break
		}
		if action == domain.ActionSkip {
			report.SkippedFiles = append(report.SkippedFiles, fp.Path)
			continue
		}

		res, err := s.applyFile(fp, plan.RegistryName)
		if err != nil {
			s.logger.Warn("file not rewritten", "file", fp.Path, "error", err)
			report.Failed = append(report.Failed, domain.IssueFromError(fp.Path, err))
			continue
		}

		s.logger.Info("rewrote file", "file", fp.Path, "applied", res.Applied, "skipped", res.Skipped)
		report.Applied = append(report.Applied, domain.AppliedFile{Path: fp.Path, Applied: res.Applied, Skipped: res.Skipped})
		report.AppliedChanges += res.Applied
		entry.Files = append(entry.Files, entryFile(fp))
	}

	s.record(opts.ProjectPath, entry)
	return report, nil
}

func (s *ApplyService) applyFile(fp domain.FilePlan, rootName string) (rewrite.Result, error) {
	content, err := s.store.Read(fp.Path)
	if err != nil {
		return rewrite.Result{}, err
	}
	if fp.Hash != "" && contentHash(content) != fp.Hash {
		return rewrite.Result{}, domain.NewError(domain.KindStale, fp.Path, "file changed since it was scanned", nil)
	}

	res, err := rewrite.Apply(string(content), rootName, rewrite.EditsFromChanges(fp.Changes))
	if err != nil {
		return rewrite.Result{}, err
	}
	if err := s.store.WriteAtomic(fp.Path, []byte(res.Text)); err != nil {
		return rewrite.Result{}, err
	}
	return res, nil
}

func entryFile(fp domain.FilePlan) domain.ApplyEntryFile {
	f := domain.ApplyEntryFile{Path: fp.Path}
	for _, c := range fp.Changes {
		f.Changes = append(f.Changes, domain.ApplyEntryChange{
			Line:   c.Reference.Line,
			Column: c.Reference.Column,
			Old:    c.Reference.Path,
			New:    c.NewPath,
		})
	}
	return f
}

func (s *ApplyService) record(projectPath string, entry domain.ApplyEntry) {
	if s.history == nil || len(entry.Files) == 0 {
		return
	}
	entry.Timestamp = s.now().UTC().Format(time.RFC3339)
	if s.resolver != nil {
		if hash, err := s.resolver.CommitHash(projectPath); err == nil {
			entry.CommitHash = hash
		}
	}
	if err := s.history.Save(projectPath, entry); err != nil {
		s.logger.Warn("could not record apply history", "error", err)
	}
}

// History returns the recorded apply runs, oldest first.
func (s *ApplyService) History(projectPath string) ([]domain.ApplyEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	entries, err := s.history.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}
