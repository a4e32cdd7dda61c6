// Package syntax defines the concrete syntax tree shared by source parsers
// and the reference extractor. Any parser that produces a Tree can be used.
package syntax

import "fmt"

// Kind identifies the syntactic construct a Node represents.
type Kind uint8

const (
	KindError Kind = iota
	KindRoot
	KindIdent
	KindLiteral
	KindString
	KindInterpolation
	KindPath
	KindSelect
	KindAttrPath
	KindOrDefault
	KindHasAttr
	KindApply
	KindBinary
	KindUnary
	KindParen
	KindList
	KindAttrSet
	KindBinding
	KindInherit
	KindInheritFrom
	KindLet
	KindWith
	KindAssert
	KindIf
	KindLambda
	KindFormals
	KindFormal
)

var kindNames = [...]string{
	KindError:         "Error",
	KindRoot:          "Root",
	KindIdent:         "Ident",
	KindLiteral:       "Literal",
	KindString:        "String",
	KindInterpolation: "Interpolation",
	KindPath:          "Path",
	KindSelect:        "Select",
	KindAttrPath:      "AttrPath",
	KindOrDefault:     "OrDefault",
	KindHasAttr:       "HasAttr",
	KindApply:         "Apply",
	KindBinary:        "Binary",
	KindUnary:         "Unary",
	KindParen:         "Paren",
	KindList:          "List",
	KindAttrSet:       "AttrSet",
	KindBinding:       "Binding",
	KindInherit:       "Inherit",
	KindInheritFrom:   "InheritFrom",
	KindLet:           "Let",
	KindWith:          "With",
	KindAssert:        "Assert",
	KindIf:            "If",
	KindLambda:        "Lambda",
	KindFormals:       "Formals",
	KindFormal:        "Formal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Start, s.End) }

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Node is one element of the tree. Text is set for leaves (identifiers,
// literals, paths) and holds the operator for Binary and Unary nodes.
//
// A Select node has exactly two children: the base expression and an
// AttrPath whose children are Ident, String or Interpolation nodes.
type Node struct {
	Kind     Kind
	Span     Span
	Text     string
	Children []*Node
}

// ParseError is a recoverable syntax error.
type ParseError struct {
	Span    Span
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Tree is the result of parsing one file.
type Tree struct {
	Source []byte
	Root   *Node
	Errors []ParseError
}

// HasErrors reports whether the parser recovered from any syntax error.
func (t *Tree) HasErrors() bool { return len(t.Errors) > 0 }

// Inspect traverses the tree rooted at n in pre-order (document order),
// calling fn for each node. Children are skipped when fn returns false.
func Inspect(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, fn)
	}
}
