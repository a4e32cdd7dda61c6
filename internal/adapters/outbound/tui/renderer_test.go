package tui_test

import (
	"strings"
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/tui"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleDetection() *domain.DetectionResult {
	broken := []domain.BrokenReference{
		{
			Reference:  domain.Reference{Path: "home.alice", File: "hosts/a.nix", Line: 3, Column: 7},
			Suggestion: "users.alice",
		},
		{
			Reference: domain.Reference{Path: "svc.gone", File: "hosts/b.nix", Line: 10, Column: 2},
			Reason:    "no path ending in 'gone' exists",
		},
	}
	return &domain.DetectionResult{
		RegistryName: "registry",
		Broken:       broken,
		Diagnostics:  domain.NewDiagnostics(2, 5, broken),
	}
}

func TestFormatBroken(t *testing.T) {
	r := sampleDetection()
	assert.Equal(t, "hosts/a.nix:3:7 home.alice  -> users.alice", tui.FormatBroken(r.Broken[0]))
	assert.Equal(t, "hosts/b.nix:10:2 svc.gone  (no path ending in 'gone' exists)", tui.FormatBroken(r.Broken[1]))
}

func TestFormatBroken_MissingReason(t *testing.T) {
	b := domain.BrokenReference{Reference: domain.Reference{Path: "x", File: "f.nix", Line: 1, Column: 1}}
	assert.Equal(t, "f.nix:1:1 x  (no suggestion)", tui.FormatBroken(b))
}

func TestRenderDetection_ListsBroken(t *testing.T) {
	output := tui.RenderDetection(sampleDetection(), false)
	assert.Contains(t, output, "2 broken reference(s)")
	assert.Contains(t, output, "hosts/a.nix:3:7")
	assert.Contains(t, output, "home.alice")
	assert.Contains(t, output, "-> users.alice")
	assert.Contains(t, output, "(no path ending in 'gone' exists)")
	assert.NotContains(t, output, "files")
}

func TestRenderDetection_VerboseDiagnostics(t *testing.T) {
	output := tui.RenderDetection(sampleDetection(), true)
	assert.Contains(t, output, "2 files")
	assert.Contains(t, output, "7 refs")
	assert.Contains(t, output, "5 valid")
	assert.Contains(t, output, "1 suggestions")
	assert.Contains(t, output, "1 unsuggestable")
}

func TestRenderDetection_Clean(t *testing.T) {
	output := tui.RenderDetection(&domain.DetectionResult{RegistryName: "registry"}, false)
	assert.Contains(t, output, "No broken references found")
}

func TestRenderDetection_FileIssues(t *testing.T) {
	r := sampleDetection()
	r.FileErrors = []domain.FileIssue{{File: "bad.nix", Kind: domain.KindIO, Message: "permission denied"}}
	r.Warnings = []domain.FileIssue{{File: "broken.nix", Kind: domain.KindParse, Message: "expected ';'"}}

	output := tui.RenderDetection(r, false)
	assert.Contains(t, output, "bad.nix")
	assert.Contains(t, output, "permission denied")
	assert.Contains(t, output, "broken.nix")
	assert.Contains(t, output, "expected ';'")
}

func TestRenderFileList(t *testing.T) {
	output := tui.RenderFileList([]string{"a.nix", "b/c.nix"})
	assert.Equal(t, "Would scan 2 files:\n  a.nix\n  b/c.nix\n", output)
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No apply history found.")
}

func TestRenderHistory_Entries(t *testing.T) {
	entries := []domain.ApplyEntry{
		{
			Timestamp:    "2026-03-01T10:00:00Z",
			CommitHash:   "0123456789abcdef",
			RegistryName: "registry",
			GitRef:       "HEAD^",
			Files: []domain.ApplyEntryFile{
				{Path: "a.nix", Changes: []domain.ApplyEntryChange{{Line: 1, Column: 1, Old: "a", New: "b"}}},
				{Path: "b.nix", Changes: []domain.ApplyEntryChange{{Line: 2, Column: 1, Old: "a", New: "b"}, {Line: 3, Column: 1, Old: "c", New: "d"}}},
			},
		},
		{Timestamp: "2026-03-02T10:00:00Z", RegistryName: "registry"},
	}

	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "2026-03-01T10:00:00")
	assert.Contains(t, output, "0123456")
	assert.NotContains(t, output, "0123456789")
	assert.Contains(t, output, "registry @ HEAD^")
	assert.Contains(t, output, "3 change(s) in 2 file(s)")
	assert.Contains(t, output, "·······")
	assert.Equal(t, 2, strings.Count(output, "change(s) in"))
}
