package rewrite_test

import (
	"strings"
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/imp-refactor/imp-refactor/internal/domain/analysis"
	"github.com/imp-refactor/imp-refactor/internal/domain/extract"
	"github.com/imp-refactor/imp-refactor/internal/domain/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edit(start, end int, newPath string) rewrite.Edit {
	return rewrite.Edit{Reference: domain.Reference{StartOffset: start, EndOffset: end}, NewPath: newPath}
}

// editAt builds an edit for the first occurrence of old in content at or after from.
func editAt(t *testing.T, content, old string, from int, newPath string) rewrite.Edit {
	t.Helper()
	i := strings.Index(content[from:], old)
	require.GreaterOrEqual(t, i, 0, "%q not found", old)
	return edit(from+i, from+i+len(old), newPath)
}

func TestApply_Exactness(t *testing.T) {
	content := "{ x = registry.old.path; }"
	e := editAt(t, content, "registry.old.path", 0, "new.path")

	res, err := rewrite.Apply(content, "registry", []rewrite.Edit{e})
	require.NoError(t, err)

	s, end := e.Reference.StartOffset, e.Reference.EndOffset
	assert.Equal(t, content[:s]+"registry.new.path"+content[end:], res.Text)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 0, res.Skipped)
}

func TestApply_LeavesCommentsAndStringsUntouched(t *testing.T) {
	content := "# registry.old.path is deprecated\n{ x = registry.old.path; y = \"registry.old.path\"; }"
	refs := extract.Extract(nixparser.Parse([]byte(content)), "f.nix", "registry")
	require.Len(t, refs, 1)

	res, err := rewrite.Apply(content, "registry", []rewrite.Edit{{Reference: refs[0], NewPath: "new.path"}})
	require.NoError(t, err)
	assert.Equal(t, "# registry.old.path is deprecated\n{ x = registry.new.path; y = \"registry.old.path\"; }", res.Text)
}

func TestApply_OrderIndependent(t *testing.T) {
	content := "{ a = root.foo.x; b = root.bar.y; }"
	first := editAt(t, content, "root.foo.x", 0, "users.foo.x")
	second := editAt(t, content, "root.bar.y", 0, "b")

	forward, err := rewrite.Apply(content, "root", []rewrite.Edit{first, second})
	require.NoError(t, err)
	backward, err := rewrite.Apply(content, "root", []rewrite.Edit{second, first})
	require.NoError(t, err)

	assert.Equal(t, "{ a = root.users.foo.x; b = root.b; }", forward.Text)
	assert.Equal(t, forward.Text, backward.Text)
}

func TestApply_ChangingLengths(t *testing.T) {
	content := "[ registry.a registry.bb registry.ccc ]"
	edits := []rewrite.Edit{
		editAt(t, content, "registry.a", 0, "long.replacement.path"),
		editAt(t, content, "registry.bb", 0, "x"),
		editAt(t, content, "registry.ccc", 0, "mid.dle"),
	}
	res, err := rewrite.Apply(content, "registry", edits)
	require.NoError(t, err)
	assert.Equal(t, "[ registry.long.replacement.path registry.x registry.mid.dle ]", res.Text)
	assert.Equal(t, 3, res.Applied)
}

func TestApply_SkipsOutOfBounds(t *testing.T) {
	content := "{ x = registry.a; }"
	good := editAt(t, content, "registry.a", 0, "b")
	edits := []rewrite.Edit{
		good,
		edit(100, 110, "nope"),
		edit(-1, 3, "nope"),
		edit(10, 5, "nope"),
	}
	res, err := rewrite.Apply(content, "registry", edits)
	require.NoError(t, err)
	assert.Equal(t, "{ x = registry.b; }", res.Text)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 3, res.Skipped)
}

func TestApply_OverlappingSpansFail(t *testing.T) {
	tests := []struct {
		name  string
		edits []rewrite.Edit
	}{
		{"partial overlap", []rewrite.Edit{edit(0, 10, "a"), edit(5, 15, "b")}},
		{"nested", []rewrite.Edit{edit(0, 20, "a"), edit(5, 10, "b")}},
		{"identical", []rewrite.Edit{edit(3, 8, "a"), edit(3, 8, "b")}},
		{"empty span inside", []rewrite.Edit{edit(2, 9, "a"), edit(4, 4, "b")}},
		{"far apart then overlap", []rewrite.Edit{edit(30, 35, "c"), edit(0, 4, "a"), edit(2, 6, "b")}},
	}
	content := strings.Repeat("x", 40)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rewrite.Apply(content, "registry", tt.edits)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindInvariant))
		})
	}
}

func TestApply_AdjacentSpansAreNotOverlapping(t *testing.T) {
	res, err := rewrite.Apply("abcdef", "r", []rewrite.Edit{edit(0, 3, "x"), edit(3, 6, "y")})
	require.NoError(t, err)
	assert.Equal(t, "r.xr.y", res.Text)
}

func TestApply_NoEdits(t *testing.T) {
	res, err := rewrite.Apply("unchanged", "registry", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", res.Text)
	assert.Zero(t, res.Applied)
}

func TestApply_FixedTextHasNoBrokenReferences(t *testing.T) {
	content := `{ registry, ... }:
{
  imports = [
    registry.home.alice
    registry.svc.db.postgresql
    registry.services.web.nginx
  ];
}`
	valid := domain.NewPathSet(
		"users", "users.alice",
		"services", "services.database", "services.database.postgresql",
		"services.web", "services.web.nginx",
	)
	renames := domain.RenameRules{"svc.db": "services.database"}

	refs := extract.Extract(nixparser.Parse([]byte(content)), "f.nix", "registry")
	broken, validCount := analysis.Analyze(refs, valid, renames)
	require.Equal(t, 1, validCount)
	require.Len(t, broken, 2)

	var edits []rewrite.Edit
	for _, b := range broken {
		require.True(t, b.HasSuggestion())
		edits = append(edits, rewrite.Edit{Reference: b.Reference, NewPath: b.Suggestion})
	}
	res, err := rewrite.Apply(content, "registry", edits)
	require.NoError(t, err)

	again := extract.Extract(nixparser.Parse([]byte(res.Text)), "f.nix", "registry")
	broken, validCount = analysis.Analyze(again, valid, renames)
	assert.Empty(t, broken)
	assert.Equal(t, 3, validCount)
}

func TestEditsFromChanges(t *testing.T) {
	ref := domain.Reference{Path: "a", StartOffset: 1, EndOffset: 2}
	edits := rewrite.EditsFromChanges([]domain.Change{{Reference: ref, NewPath: "b"}})
	require.Len(t, edits, 1)
	assert.Equal(t, ref, edits[0].Reference)
	assert.Equal(t, "b", edits[0].NewPath)
}

func TestApply_PreservesTextBetweenEdits(t *testing.T) {
	content := "[root.a root.bb.cc.dd\troot.e]root.f"
	edits := []rewrite.Edit{
		editAt(t, content, "root.a", 0, "much.longer.path"),
		editAt(t, content, "root.bb.cc.dd", 0, "x"),
		editAt(t, content, "root.e", 0, "e.e"),
		editAt(t, content, "root.f", 0, "f"),
	}

	res, err := rewrite.Apply(content, "root", edits)
	require.NoError(t, err)
	assert.Equal(t, "[root.much.longer.path root.x\troot.e.e]root.f", res.Text)
	assert.Equal(t, 4, res.Applied)
}
