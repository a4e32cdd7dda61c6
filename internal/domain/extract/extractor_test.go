package extract_test

import (
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/imp-refactor/imp-refactor/internal/domain/extract"
	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(src string) []string {
	return extract.Paths(nixparser.Parse([]byte(src)), "registry")
}

func TestExtract_SimpleReference(t *testing.T) {
	src := "{ a = registry.home.alice; }"
	refs := extract.Extract(nixparser.Parse([]byte(src)), "hosts/a.nix", "registry")

	require.Len(t, refs, 1)
	r := refs[0]
	assert.Equal(t, domain.Reference{
		Path:        "home.alice",
		File:        "hosts/a.nix",
		Line:        1,
		Column:      7,
		StartOffset: 6,
		EndOffset:   25,
	}, r)
	assert.Equal(t, "registry.home.alice", src[r.StartOffset:r.EndOffset])
}

func TestExtract_EmitsOnlyMaximalSelection(t *testing.T) {
	assert.Equal(t, []string{"a.b.c"}, paths("registry.a.b.c"))
}

func TestExtract_DocumentOrder(t *testing.T) {
	src := `{
  b = registry.z;
  a = [ registry.y.one registry.x ];
}`
	assert.Equal(t, []string{"z", "y.one", "x"}, paths(src))
}

func TestExtract_LineAndColumnCountCharacters(t *testing.T) {
	src := "{\n  x = [ \"éé\" registry.a ];\n}"
	refs := extract.Extract(nixparser.Parse([]byte(src)), "f.nix", "registry")
	require.Len(t, refs, 1)
	assert.Equal(t, 2, refs[0].Line)
	assert.Equal(t, 14, refs[0].Column)
	assert.Equal(t, "registry.a", src[refs[0].StartOffset:refs[0].EndOffset])
}

func TestExtract_NonIdentifierAttributesInvalidateChain(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"interpolated attribute", "registry.home.${user}"},
		{"string attribute", `registry."home".alice`},
		{"interpolated middle attribute", "registry.${x}.alice"},
		{"call as base", "(f registry).home"},
		{"other root", "other.home.alice"},
		{"prefix of root name", "registryX.home"},
		{"bare root", "registry"},
		{"has-attr on root", "registry ? home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, paths(tt.src))
		})
	}
}

func TestExtract_ReferencesInsideDynamicParts(t *testing.T) {
	assert.Equal(t, []string{"names.alice"}, paths("other.${registry.names.alice}"))
	assert.Equal(t, []string{"names.bob"}, paths("registry.home.${registry.names.bob}"))
}

func TestExtract_ParenthesizedBaseStopsChain(t *testing.T) {
	// The outer access has an arbitrary expression as base; the inner one
	// is a complete selection on its own.
	assert.Equal(t, []string{"a"}, paths("(registry.a).b"))
}

func TestExtract_OrDefault(t *testing.T) {
	src := "registry.a.b or registry.c"
	refs := extract.Extract(nixparser.Parse([]byte(src)), "", "registry")
	require.Len(t, refs, 2)
	assert.Equal(t, "a.b", refs[0].Path)
	assert.Equal(t, "registry.a.b", src[refs[0].StartOffset:refs[0].EndOffset])
	assert.Equal(t, "c", refs[1].Path)
}

func TestExtract_ShadowedParameterStillMatches(t *testing.T) {
	assert.Equal(t, []string{"a"}, paths("registry: registry.a"))
	assert.Equal(t, []string{"b"}, paths("{ registry, ... }: registry.b"))
}

func TestExtract_InsideStringsAndCommentsOnlyRealCode(t *testing.T) {
	src := `# registry.old.path is deprecated
{
  x = registry.old.path;
  y = "registry.in.text";
  z = "${registry.interp}";
}`
	assert.Equal(t, []string{"old.path", "interp"}, paths(src))
}

func TestExtract_ContinuesAfterSyntaxErrors(t *testing.T) {
	src := `{
  a = registry.first.x
  b = = ;
  c = registry.second.y;
`
	tree := nixparser.Parse([]byte(src))
	require.True(t, tree.HasErrors())
	assert.Equal(t, []string{"first.x", "second.y"}, extract.Paths(tree, "registry"))
}

func TestExtract_CustomRootName(t *testing.T) {
	src := "[ reg.a registry.b ]"
	assert.Equal(t, []string{"a"}, extract.Paths(nixparser.Parse([]byte(src)), "reg"))
}

func TestExtract_NilTreeOrEmptyRoot(t *testing.T) {
	assert.Nil(t, extract.Extract(nil, "f", "registry"))
	assert.Nil(t, extract.Extract(nixparser.Parse([]byte("registry.a")), "f", ""))
}

func TestExtract_HandBuiltTree(t *testing.T) {
	// registry.a.b with a nested Select base, as another parser might build it.
	src := []byte("registry.a.b")
	ident := func(text string, start int) *syntax.Node {
		return &syntax.Node{Kind: syntax.KindIdent, Text: text, Span: syntax.Span{Start: start, End: start + len(text)}}
	}
	inner := &syntax.Node{Kind: syntax.KindSelect, Span: syntax.Span{Start: 0, End: 10}, Children: []*syntax.Node{
		ident("registry", 0),
		{Kind: syntax.KindAttrPath, Span: syntax.Span{Start: 9, End: 10}, Children: []*syntax.Node{ident("a", 9)}},
	}}
	outer := &syntax.Node{Kind: syntax.KindSelect, Span: syntax.Span{Start: 0, End: 12}, Children: []*syntax.Node{
		inner,
		{Kind: syntax.KindAttrPath, Span: syntax.Span{Start: 11, End: 12}, Children: []*syntax.Node{ident("b", 11)}},
	}}
	tree := &syntax.Tree{Source: src, Root: &syntax.Node{Kind: syntax.KindRoot, Children: []*syntax.Node{outer}}}

	refs := extract.Extract(tree, "f.nix", "registry")
	require.Len(t, refs, 1)
	assert.Equal(t, "a.b", refs[0].Path)
	assert.Equal(t, 0, refs[0].StartOffset)
	assert.Equal(t, 12, refs[0].EndOffset)
}
