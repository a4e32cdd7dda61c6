// Package analysis classifies registry references and proposes replacements.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

const maxReasonExamples = 3

// Analyzer checks references against the valid registry paths. It is
// immutable after construction and safe for concurrent use.
type Analyzer struct {
	valid   domain.PathSet
	renames *renameTrie
	byLeaf  map[string][]string
}

// NewAnalyzer indexes valid and renames for repeated lookups.
func NewAnalyzer(valid domain.PathSet, renames domain.RenameRules) *Analyzer {
	byLeaf := make(map[string][]string)
	for p := range valid {
		leaf := domain.Leaf(p)
		byLeaf[leaf] = append(byLeaf[leaf], p)
	}
	for _, paths := range byLeaf {
		sort.Strings(paths)
	}
	return &Analyzer{
		valid:   valid,
		renames: newRenameTrie(renames),
		byLeaf:  byLeaf,
	}
}

// Analyze returns the broken references, in input order, and the number
// of valid ones. validCount + len(broken) == len(refs).
func (a *Analyzer) Analyze(refs []domain.Reference) ([]domain.BrokenReference, int) {
	var broken []domain.BrokenReference
	validCount := 0
	for _, ref := range refs {
		if a.valid.Has(ref.Path) {
			validCount++
			continue
		}
		b := domain.BrokenReference{Reference: ref}
		if s, ok := a.Suggest(ref.Path); ok {
			b.Suggestion = s
		} else {
			b.Reason = a.Reason(ref.Path)
		}
		broken = append(broken, b)
	}
	return broken, validCount
}

// IsValid reports whether path is a literal member of the valid set.
func (a *Analyzer) IsValid(path string) bool { return a.valid.Has(path) }

// Suggest proposes a valid replacement for path. Explicit renames are
// tried first; if the renamed path does not exist, a valid path sharing
// the same leaf is used when it is the only one.
func (a *Analyzer) Suggest(path string) (string, bool) {
	if renamed, ok := a.renames.rewrite(path); ok && a.valid.Has(renamed) {
		return renamed, true
	}
	candidates := a.byLeaf[domain.Leaf(path)]
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

// Reason explains why Suggest found nothing for path.
func (a *Analyzer) Reason(path string) string {
	leaf := domain.Leaf(path)
	candidates := a.byLeaf[leaf]
	if len(candidates) == 0 {
		return fmt.Sprintf("no path ending in '%s' exists", leaf)
	}
	shown := candidates
	if len(shown) > maxReasonExamples {
		shown = shown[:maxReasonExamples]
	}
	return fmt.Sprintf("ambiguous: %d paths end in '%s': %s", len(candidates), leaf, strings.Join(shown, ", "))
}

// Analyze is a one-shot form of NewAnalyzer(valid, renames).Analyze(refs).
func Analyze(refs []domain.Reference, valid domain.PathSet, renames domain.RenameRules) ([]domain.BrokenReference, int) {
	return NewAnalyzer(valid, renames).Analyze(refs)
}

// Suggest is a one-shot form of NewAnalyzer(valid, renames).Suggest(path).
func Suggest(path string, valid domain.PathSet, renames domain.RenameRules) (string, bool) {
	return NewAnalyzer(valid, renames).Suggest(path)
}
