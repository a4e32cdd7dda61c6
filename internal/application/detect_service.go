package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/imp-refactor/imp-refactor/internal/domain/analysis"
	"github.com/imp-refactor/imp-refactor/internal/domain/extract"
	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
	"golang.org/x/sync/errgroup"
)

// ProgressReporter is told about each scanned file.
type ProgressReporter interface {
	Start(total int)
	Advance(file string)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)      {}
func (noProgress) Advance(string) {}
func (noProgress) Finish()        {}

// DetectService orchestrates detection:
// collect files → evaluate registry → extract refs in parallel → analyze.
type DetectService struct {
	collector domain.FileCollector
	parser    domain.SourceParser
	store     domain.FileStore
	registry  *RegistryService
	logger    *slog.Logger
	progress  ProgressReporter
}

func NewDetectService(
	collector domain.FileCollector,
	parser domain.SourceParser,
	store domain.FileStore,
	registry *RegistryService,
	logger *slog.Logger,
) *DetectService {
	return &DetectService{
		collector: collector,
		parser:    parser,
		store:     store,
		registry:  registry,
		logger:    orDiscard(logger),
		progress:  noProgress{},
	}
}

// WithProgress returns a copy of the service that reports per-file progress.
func (s *DetectService) WithProgress(p ProgressReporter) *DetectService {
	c := *s
	if p == nil {
		p = noProgress{}
	}
	c.progress = p
	return &c
}

// Files lists the files a scan would visit.
func (s *DetectService) Files(opts ScanOptions) ([]string, error) {
	files, err := s.collector.Collect(opts.Paths, opts.Exclude, !opts.NoDefaultExcludes)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}
	return files, nil
}

// Detect reports every broken registry reference under opts.Paths.
func (s *DetectService) Detect(ctx context.Context, opts ScanOptions) (*domain.DetectionResult, error) {
	run, err := s.scan(ctx, opts)
	if err != nil {
		return nil, err
	}

	var refs []domain.Reference
	for _, f := range run.files {
		refs = append(refs, f.refs...)
	}
	broken, validCount := run.analyzer.Analyze(refs)
	if broken == nil {
		broken = []domain.BrokenReference{}
	}

	result := &domain.DetectionResult{
		RegistryName: opts.RegistryName,
		GitRef:       opts.GitRef,
		Broken:       broken,
		Diagnostics:  domain.NewDiagnostics(run.read, validCount, broken),
		FileErrors:   run.fileErrors,
		Warnings:     run.warnings,
	}
	s.logger.Info("detection finished",
		"files", result.Diagnostics.FilesScanned,
		"refs", result.Diagnostics.TotalRefs,
		"broken", result.Diagnostics.BrokenRefs,
	)
	return result, nil
}

type scannedFile struct {
	path  string
	hash  string
	refs  []domain.Reference
	err   error
	parse *domain.FileIssue
}

type scanRun struct {
	analyzer   *analysis.Analyzer
	files      []scannedFile
	read       int
	fileErrors []domain.FileIssue
	warnings   []domain.FileIssue
}

func (s *DetectService) scan(ctx context.Context, opts ScanOptions) (*scanRun, error) {
	if opts.RegistryName == "" {
		opts.RegistryName = domain.DefaultRegistryName
	}

	files, err := s.Files(opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("collected files", "count", len(files))

	snap, err := s.registry.Snapshot(ctx, opts.RegistryOptions())
	if err != nil {
		return nil, err
	}
	valid := snap.ValidPaths()
	s.logger.Info("registry loaded", "valid_paths", len(valid))

	scanned, err := s.scanFiles(ctx, files, opts.RegistryName, opts.Jobs)
	if err != nil {
		return nil, err
	}

	run := &scanRun{analyzer: analysis.NewAnalyzer(valid, opts.Renames), files: scanned}
	for _, f := range scanned {
		if f.err != nil {
			s.logger.Warn("skipping file", "file", f.path, "error", f.err)
			run.fileErrors = append(run.fileErrors, domain.IssueFromError(f.path, f.err))
			continue
		}
		run.read++
		if f.parse != nil {
			s.logger.Warn("syntax errors", "file", f.path, "detail", f.parse.Message)
			run.warnings = append(run.warnings, *f.parse)
		}
	}
	return run, nil
}

func (s *DetectService) scanFiles(ctx context.Context, files []string, rootName string, jobs int) ([]scannedFile, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]scannedFile, len(files))

	s.progress.Start(len(files))
	defer s.progress.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scanFile(path, rootName)
			s.progress.Advance(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *DetectService) scanFile(path, rootName string) scannedFile {
	content, err := s.store.Read(path)
	if err != nil {
		return scannedFile{path: path, err: err}
	}

	tree := s.parser.Parse(content)
	f := scannedFile{
		path: path,
		hash: contentHash(content),
		refs: extract.Extract(tree, path, rootName),
	}
	if tree.HasErrors() {
		f.parse = parseIssue(path, tree)
	}
	return f
}

func parseIssue(path string, tree *syntax.Tree) *domain.FileIssue {
	first := tree.Errors[0]
	line, col := syntax.NewLineIndex(tree.Source).Position(first.Span.Start)
	return &domain.FileIssue{
		File:    path,
		Kind:    domain.KindParse,
		Message: fmt.Sprintf("%d syntax error(s), first at %d:%d: %s", len(tree.Errors), line, col, first.Message),
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
