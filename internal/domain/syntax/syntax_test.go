package syntax_test

import (
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
	"github.com/stretchr/testify/assert"
)

func TestLineIndex_Position(t *testing.T) {
	li := syntax.NewLineIndex([]byte("ab\ncdé\n\nx"))
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{7, 2, 4}, // after the two-byte é
		{8, 3, 1},
		{9, 4, 1},
		{100, 4, 2},
		{-1, 1, 1},
	}
	for _, tt := range tests {
		line, col := li.Position(tt.offset)
		assert.Equal(t, tt.line, line, "line at %d", tt.offset)
		assert.Equal(t, tt.col, col, "column at %d", tt.offset)
	}
}

func TestSpan_Cover(t *testing.T) {
	a := syntax.Span{Start: 4, End: 8}
	assert.Equal(t, syntax.Span{Start: 2, End: 8}, a.Cover(syntax.Span{Start: 2, End: 5}))
	assert.Equal(t, syntax.Span{Start: 4, End: 10}, a.Cover(syntax.Span{Start: 9, End: 10}))
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, "4-8", a.String())
}

func TestInspect_PreOrderAndPrune(t *testing.T) {
	leaf := func(text string) *syntax.Node { return &syntax.Node{Kind: syntax.KindIdent, Text: text} }
	root := &syntax.Node{Kind: syntax.KindRoot, Children: []*syntax.Node{
		{Kind: syntax.KindList, Children: []*syntax.Node{leaf("a"), leaf("b")}},
		{Kind: syntax.KindParen, Children: []*syntax.Node{leaf("hidden")}},
		leaf("c"),
	}}

	var seen []string
	syntax.Inspect(root, func(n *syntax.Node) bool {
		seen = append(seen, n.Kind.String()+n.Text)
		return n.Kind != syntax.KindParen
	})
	assert.Equal(t, []string{"Root", "List", "Identa", "Identb", "Paren", "Identc"}, seen)
}

func TestTree_HasErrors(t *testing.T) {
	assert.False(t, (&syntax.Tree{}).HasErrors())
	tree := &syntax.Tree{Errors: []syntax.ParseError{{Span: syntax.Span{Start: 1, End: 2}, Message: "boom"}}}
	assert.True(t, tree.HasErrors())
	assert.Equal(t, "1-2: boom", tree.Errors[0].Error())
}
