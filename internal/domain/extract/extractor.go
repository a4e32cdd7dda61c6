// Package extract finds registry references in a syntax tree.
//
// A reference is a maximal attribute selection whose innermost base is the
// registry identifier and whose attributes are all plain identifiers:
//
//	registry.home.alice        -> "home.alice"
//	registry.home.${name}      -> nothing (dynamic attribute)
//	registry."home".alice      -> nothing (string attribute)
//	(f registry).home          -> nothing (base is not the identifier)
//
// Matching is purely syntactic. A function parameter that shadows the
// registry name is still reported.
package extract

import (
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
)

// Extract returns the registry references of tree in document order.
func Extract(tree *syntax.Tree, file, rootName string) []domain.Reference {
	if tree == nil || tree.Root == nil || rootName == "" {
		return nil
	}
	e := &extractor{
		file:  file,
		root:  rootName,
		lines: syntax.NewLineIndex(tree.Source),
	}
	e.walk(tree.Root, false)
	return e.refs
}

// Paths is Extract reduced to the dotted paths.
func Paths(tree *syntax.Tree, rootName string) []string {
	refs := Extract(tree, "", rootName)
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Path
	}
	return out
}

type extractor struct {
	file  string
	root  string
	lines *syntax.LineIndex
	refs  []domain.Reference
}

// walk visits n in pre-order. isBase is true when n is the base
// expression of an enclosing Select, in which case n is part of a larger
// access and must not be reported on its own.
func (e *extractor) walk(n *syntax.Node, isBase bool) {
	if n.Kind == syntax.KindSelect && !isBase {
		if segments, ok := e.resolve(n); ok {
			e.emit(n, segments)
		}
	}
	for i, c := range n.Children {
		e.walk(c, n.Kind == syntax.KindSelect && i == 0)
	}
}

// resolve reconstructs the dotted path of a Select chain. It fails if the
// innermost base is not the root identifier or if any attribute along the
// chain is not a plain identifier.
func (e *extractor) resolve(n *syntax.Node) ([]string, bool) {
	if len(n.Children) != 2 {
		return nil, false
	}
	base, attrs := n.Children[0], n.Children[1]
	if attrs.Kind != syntax.KindAttrPath || len(attrs.Children) == 0 {
		return nil, false
	}

	var segments []string
	switch base.Kind {
	case syntax.KindIdent:
		if base.Text != e.root {
			return nil, false
		}
	case syntax.KindSelect:
		inner, ok := e.resolve(base)
		if !ok {
			return nil, false
		}
		segments = inner
	default:
		return nil, false
	}

	for _, a := range attrs.Children {
		if a.Kind != syntax.KindIdent {
			return nil, false
		}
		segments = append(segments, a.Text)
	}
	return segments, true
}

func (e *extractor) emit(n *syntax.Node, segments []string) {
	line, col := e.lines.Position(n.Span.Start)
	e.refs = append(e.refs, domain.Reference{
		Path:        strings.Join(segments, "."),
		File:        e.file,
		Line:        line,
		Column:      col,
		StartOffset: n.Span.Start,
		EndOffset:   n.Span.End,
	})
}
