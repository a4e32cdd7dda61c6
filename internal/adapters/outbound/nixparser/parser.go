// Package nixparser is a recovering parser for the Nix expression language.
// It never fails: syntax errors are collected on the tree and parsing
// resumes at the next binding, closing delimiter or keyword, so that
// selections in the well-formed parts of a file remain visible.
package nixparser

import (
	"fmt"
	"sort"

	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
)

// Parser implements domain.SourceParser.
type Parser struct{}

// New creates a Nix parser.
func New() *Parser {
	return &Parser{}
}

// Parse builds the syntax tree of src.
func (*Parser) Parse(src []byte) *syntax.Tree {
	return Parse(src)
}

// Parse builds the syntax tree of src.
func Parse(src []byte) *syntax.Tree {
	p := &parser{lx: NewLexer(src)}
	p.advance()
	root := p.parseRoot()
	errs := append(p.lx.Errors(), p.errs...)
	sortErrors(errs)
	return &syntax.Tree{Source: src, Root: root, Errors: errs}
}

type parser struct {
	lx       *Lexer
	tok      Token
	ahead    []Token
	prevEnd  int
	consumed int
	errs     []syntax.ParseError
}

func (p *parser) advance() {
	p.prevEnd = p.tok.Span.End
	if len(p.ahead) > 0 {
		p.tok = p.ahead[0]
		p.ahead = p.ahead[1:]
	} else {
		p.tok = p.lx.Next()
	}
	p.consumed++
}

// peek returns the token n positions after the current one.
func (p *parser) peek(n int) Token {
	for len(p.ahead) < n {
		p.ahead = append(p.ahead, p.lx.Next())
	}
	return p.ahead[n-1]
}

func (p *parser) at(kind TokenKind) bool { return p.tok.Kind == kind }

func (p *parser) accept(kind TokenKind) bool {
	if p.tok.Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind) bool {
	if p.accept(kind) {
		return true
	}
	p.errorf(p.tok.Span, "expected %s, found %s", kind, p.tok.Kind)
	return false
}

func (p *parser) errorf(span syntax.Span, format string, args ...any) {
	p.errs = append(p.errs, syntax.ParseError{Span: span, Message: fmt.Sprintf(format, args...)})
}

func node(kind syntax.Kind, start, end int, children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: kind, Span: syntax.Span{Start: start, End: end}, Children: children}
}

func (p *parser) leaf(kind syntax.Kind) *syntax.Node {
	n := &syntax.Node{Kind: kind, Span: p.tok.Span, Text: p.tok.Text}
	p.advance()
	return n
}

func (p *parser) parseRoot() *syntax.Node {
	root := node(syntax.KindRoot, 0, len(p.lx.src))
	if p.at(TokEOF) {
		p.errorf(p.tok.Span, "expected expression, found %s", p.tok.Kind)
		return root
	}
	root.Children = append(root.Children, p.parseExpr())
	for !p.at(TokEOF) {
		p.errorf(p.tok.Span, "unexpected %s after expression", p.tok.Kind)
		before := p.consumed
		junk := p.recover(func(TokenKind) bool { return false })
		if p.consumed == before {
			p.advance()
			junk.Span.End = p.prevEnd
		}
		root.Children = append(root.Children, junk)
	}
	return root
}

// recover consumes tokens up to a closing delimiter or keyword, or a token
// accepted by stop. Any expression found on the way is parsed and kept
// under the returned Error node, so its selections are not lost.
func (p *parser) recover(stop func(TokenKind) bool) *syntax.Node {
	junk := node(syntax.KindError, p.tok.Span.Start, p.tok.Span.Start)
	for !p.at(TokEOF) && !stop(p.tok.Kind) && !isCloser(p.tok.Kind) {
		before := p.consumed
		if startsExpr(p.tok.Kind) {
			junk.Children = append(junk.Children, p.parseExpr())
		}
		if p.consumed == before {
			p.advance()
		}
		junk.Span.End = p.prevEnd
	}
	return junk
}

// isCloser reports tokens that end a construct opened earlier.
func isCloser(k TokenKind) bool {
	switch k {
	case TokRBrace, TokRBracket, TokRParen, TokIn, TokThen, TokElse, TokInterpEnd:
		return true
	}
	return false
}

func isSync(k TokenKind) bool {
	return k == TokSemi || k == TokEOF || isCloser(k)
}

func startsSimple(k TokenKind) bool {
	switch k {
	case TokIdent, TokInt, TokFloat, TokURI, TokPath, TokPathPart, TokSearchPath,
		TokStringStart, TokIndStringStart, TokLParen, TokLBracket, TokLBrace, TokRec:
		return true
	}
	return false
}

func startsExpr(k TokenKind) bool {
	switch k {
	case TokLet, TokIf, TokWith, TokAssert, TokNot, TokMinus, TokOr:
		return true
	}
	return startsSimple(k)
}

// parseExpr parses a full expression. Lambdas, let, with, assert and if
// extend as far right as possible.
func (p *parser) parseExpr() *syntax.Node {
	return p.parseBinary(0)
}

func (p *parser) parseLet() *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(syntax.KindLet, start, start)
	n.Children = p.parseBindings(TokIn)
	if p.expect(TokIn) {
		n.Children = append(n.Children, p.parseExpr())
	}
	n.Span.End = p.prevEnd
	return n
}

func (p *parser) parseIf() *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(syntax.KindIf, start, start, p.parseExpr())
	if p.expect(TokThen) {
		n.Children = append(n.Children, p.parseExpr())
	}
	if p.expect(TokElse) {
		n.Children = append(n.Children, p.parseExpr())
	}
	n.Span.End = p.prevEnd
	return n
}

// parseScoped parses `with e; body` and `assert e; body`.
func (p *parser) parseScoped(kind syntax.Kind) *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(kind, start, start, p.parseExpr())
	if p.expect(TokSemi) {
		n.Children = append(n.Children, p.parseExpr())
	}
	n.Span.End = p.prevEnd
	return n
}

// isFormals reports whether the '{' at the current token opens a lambda
// parameter set rather than an attribute set.
func (p *parser) isFormals() bool {
	t1 := p.peek(1).Kind
	switch t1 {
	case TokEllipsis:
		return true
	case TokRBrace:
		t2 := p.peek(2).Kind
		return t2 == TokColon || t2 == TokAt
	case TokIdent, TokOr:
		switch p.peek(2).Kind {
		case TokComma, TokQuestion:
			return true
		case TokRBrace:
			t3 := p.peek(3).Kind
			return t3 == TokColon || t3 == TokAt
		}
	}
	return false
}

func (p *parser) parseLambda() *syntax.Node {
	start := p.tok.Span.Start
	n := node(syntax.KindLambda, start, start)
	if p.at(TokIdent) {
		n.Children = append(n.Children, p.leaf(syntax.KindIdent))
		if p.accept(TokAt) {
			if p.at(TokLBrace) {
				n.Children = append(n.Children, p.parseFormals())
			} else {
				p.errorf(p.tok.Span, "expected %s, found %s", TokLBrace, p.tok.Kind)
			}
		}
	} else {
		n.Children = append(n.Children, p.parseFormals())
		if p.accept(TokAt) {
			if p.at(TokIdent) {
				n.Children = append(n.Children, p.leaf(syntax.KindIdent))
			} else {
				p.errorf(p.tok.Span, "expected %s, found %s", TokIdent, p.tok.Kind)
			}
		}
	}
	if p.expect(TokColon) {
		n.Children = append(n.Children, p.parseExpr())
	}
	n.Span.End = p.prevEnd
	return n
}

func (p *parser) parseFormals() *syntax.Node {
	start := p.tok.Span.Start
	p.expect(TokLBrace)
	n := node(syntax.KindFormals, start, start)
loop:
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		before := p.consumed
		switch p.tok.Kind {
		case TokEllipsis:
			n.Children = append(n.Children, p.leaf(syntax.KindLiteral))
		case TokIdent, TokOr:
			start, end := p.tok.Span.Start, p.tok.Span.End
			id := p.leaf(syntax.KindIdent)
			f := node(syntax.KindFormal, start, end, id)
			if p.accept(TokQuestion) {
				f.Children = append(f.Children, p.parseExpr())
			}
			f.Span.End = p.prevEnd
			n.Children = append(n.Children, f)
		default:
			p.errorf(p.tok.Span, "expected formal parameter, found %s", p.tok.Kind)
			if isCloser(p.tok.Kind) {
				break loop
			}
			n.Children = append(n.Children, p.recover(func(k TokenKind) bool { return k == TokComma }))
		}
		if p.accept(TokComma) || p.at(TokRBrace) {
			continue
		}
		p.errorf(p.tok.Span, "expected %s or %s, found %s", TokComma, TokRBrace, p.tok.Kind)
		if isCloser(p.tok.Kind) {
			break
		}
		if p.consumed == before {
			p.advance()
		}
	}
	p.expect(TokRBrace)
	n.Span.End = p.prevEnd
	return n
}

// Binding powers, loosest first.
const (
	bpPipe = iota + 1
	bpImpl
	bpOr
	bpAnd
	bpEquality
	bpCompare
	bpUpdate
	bpNot
	bpAdd
	bpMul
	bpConcat
	bpHasAttr
	bpNegate
)

// infix returns the left binding power of an infix operator and whether it
// associates to the right.
func infix(k TokenKind) (int, bool, bool) {
	switch k {
	case TokPipeR:
		return bpPipe, false, true
	case TokPipeL:
		return bpPipe, true, true
	case TokImpl:
		return bpImpl, true, true
	case TokOrOr:
		return bpOr, false, true
	case TokAnd:
		return bpAnd, false, true
	case TokEq, TokNeq:
		return bpEquality, false, true
	case TokLt, TokGt, TokLe, TokGe:
		return bpCompare, false, true
	case TokUpdate:
		return bpUpdate, true, true
	case TokPlus, TokMinus:
		return bpAdd, false, true
	case TokStar, TokSlash:
		return bpMul, false, true
	case TokConcat:
		return bpConcat, true, true
	}
	return 0, false, false
}

func (p *parser) parseBinary(minBP int) *syntax.Node {
	left := p.parseUnary()
	for {
		if p.at(TokQuestion) && bpHasAttr >= minBP {
			p.advance()
			path := p.parseAttrPath()
			left = node(syntax.KindHasAttr, left.Span.Start, p.prevEnd, left, path)
			continue
		}
		bp, right, ok := infix(p.tok.Kind)
		if !ok || bp < minBP {
			return left
		}
		op := p.tok
		p.advance()
		next := bp + 1
		if right {
			next = bp
		}
		rhs := p.parseBinary(next)
		bin := node(syntax.KindBinary, left.Span.Start, p.prevEnd, left, rhs)
		bin.Text = op.Text
		left = bin
	}
}

func (p *parser) parseUnary() *syntax.Node {
	switch p.tok.Kind {
	case TokNot, TokMinus:
		op := p.tok
		p.advance()
		bp := bpNot
		if op.Kind == TokMinus {
			bp = bpNegate
		}
		operand := p.parseBinary(bp)
		n := node(syntax.KindUnary, op.Span.Start, p.prevEnd, operand)
		n.Text = op.Text
		return n
	case TokLet:
		if p.peek(1).Kind != TokLBrace {
			return p.parseLet()
		}
	case TokIf:
		return p.parseIf()
	case TokWith:
		return p.parseScoped(syntax.KindWith)
	case TokAssert:
		return p.parseScoped(syntax.KindAssert)
	case TokIdent:
		if next := p.peek(1).Kind; next == TokColon || next == TokAt {
			return p.parseLambda()
		}
	case TokLBrace:
		if p.isFormals() {
			return p.parseLambda()
		}
	}
	return p.parseApply()
}

func (p *parser) parseApply() *syntax.Node {
	fn := p.parseSelect()
	for startsSimple(p.tok.Kind) {
		arg := p.parseSelect()
		fn = node(syntax.KindApply, fn.Span.Start, arg.Span.End, fn, arg)
	}
	return fn
}

// parseSelect parses `simple`, `simple.attrpath` and `simple.attrpath or default`.
func (p *parser) parseSelect() *syntax.Node {
	base := p.parseSimple()
	if !p.at(TokDot) {
		return base
	}
	p.advance()
	path := p.parseAttrPath()
	end := p.prevEnd
	if len(path.Children) > 0 {
		end = path.Span.End
	}
	sel := node(syntax.KindSelect, base.Span.Start, end, base, path)
	if !p.at(TokOr) {
		return sel
	}
	p.advance()
	def := p.parseSelect()
	return node(syntax.KindOrDefault, sel.Span.Start, p.prevEnd, sel, def)
}

// parseAttrPath parses one or more attribute names separated by '.'.
func (p *parser) parseAttrPath() *syntax.Node {
	start := p.tok.Span.Start
	n := node(syntax.KindAttrPath, start, start)
	for {
		attr := p.parseAttr()
		if attr == nil {
			break
		}
		n.Children = append(n.Children, attr)
		n.Span.End = attr.Span.End
		if !p.at(TokDot) {
			break
		}
		p.advance()
	}
	return n
}

// parseAttr parses a single attribute name. It returns nil, after
// recording an error, when the current token cannot name an attribute.
func (p *parser) parseAttr() *syntax.Node {
	switch p.tok.Kind {
	case TokIdent, TokOr:
		return p.leaf(syntax.KindIdent)
	case TokStringStart, TokIndStringStart:
		return p.parseString()
	case TokInterpStart:
		return p.parseInterpolation()
	}
	p.errorf(p.tok.Span, "expected attribute name, found %s", p.tok.Kind)
	return nil
}

func (p *parser) parseSimple() *syntax.Node {
	switch p.tok.Kind {
	case TokIdent, TokOr:
		return p.leaf(syntax.KindIdent)
	case TokInt, TokFloat, TokURI:
		return p.leaf(syntax.KindLiteral)
	case TokPath, TokSearchPath:
		return p.leaf(syntax.KindPath)
	case TokPathPart:
		return p.parseInterpolatedPath()
	case TokStringStart, TokIndStringStart:
		return p.parseString()
	case TokLParen:
		start := p.tok.Span.Start
		p.advance()
		n := node(syntax.KindParen, start, start, p.parseExpr())
		if !p.at(TokRParen) {
			p.errorf(p.tok.Span, "expected %s, found %s", TokRParen, p.tok.Kind)
			n.Children = append(n.Children, p.recover(func(k TokenKind) bool { return k == TokRParen }))
		}
		p.accept(TokRParen)
		n.Span.End = p.prevEnd
		return n
	case TokLBracket:
		return p.parseList()
	case TokLBrace:
		return p.parseAttrSet(p.tok.Span.Start, false)
	case TokRec:
		start := p.tok.Span.Start
		p.advance()
		if !p.at(TokLBrace) {
			p.errorf(p.tok.Span, "expected %s, found %s", TokLBrace, p.tok.Kind)
			return node(syntax.KindError, start, p.prevEnd)
		}
		return p.parseAttrSet(start, true)
	case TokLet:
		// legacy `let { ... }`
		start := p.tok.Span.Start
		p.advance()
		return p.parseAttrSet(start, true)
	}

	p.errorf(p.tok.Span, "expected expression, found %s", p.tok.Kind)
	start := p.tok.Span.Start
	if isSync(p.tok.Kind) {
		return node(syntax.KindError, start, start)
	}
	p.advance()
	return node(syntax.KindError, start, p.prevEnd)
}

func (p *parser) parseList() *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(syntax.KindList, start, start)
	for !p.at(TokRBracket) && !p.at(TokEOF) {
		if !startsSimple(p.tok.Kind) {
			if isSync(p.tok.Kind) {
				break
			}
			p.errorf(p.tok.Span, "unexpected %s in list", p.tok.Kind)
			n.Children = append(n.Children, p.recover(func(k TokenKind) bool { return k == TokRBracket || startsSimple(k) }))
			continue
		}
		n.Children = append(n.Children, p.parseSelect())
	}
	p.expect(TokRBracket)
	n.Span.End = p.prevEnd
	return n
}

func (p *parser) parseAttrSet(start int, rec bool) *syntax.Node {
	p.expect(TokLBrace)
	n := node(syntax.KindAttrSet, start, start)
	if rec {
		n.Text = "rec"
	}
	n.Children = p.parseBindings(TokRBrace)
	p.expect(TokRBrace)
	n.Span.End = p.prevEnd
	return n
}

// parseBindings parses bindings up to the end token, which is left unconsumed.
func (p *parser) parseBindings(end TokenKind) []*syntax.Node {
	var out []*syntax.Node
	for !p.at(end) && !p.at(TokEOF) {
		before := p.consumed
		if p.at(TokInherit) {
			out = append(out, p.parseInherit())
		} else if isSync(p.tok.Kind) {
			// A closer that belongs to an enclosing construct.
			if p.tok.Kind != TokSemi {
				p.errorf(p.tok.Span, "expected %s, found %s", end, p.tok.Kind)
				break
			}
			p.errorf(p.tok.Span, "unexpected %s", p.tok.Kind)
			p.advance()
		} else {
			out = append(out, p.parseBinding(end))
		}
		if p.consumed == before {
			p.advance()
		}
	}
	return out
}

func (p *parser) parseBinding(end TokenKind) *syntax.Node {
	start := p.tok.Span.Start
	path := p.parseAttrPath()
	n := node(syntax.KindBinding, start, start, path)
	stop := func(k TokenKind) bool { return k == end || k == TokSemi }

	if !p.expect(TokAssign) {
		n.Kind = syntax.KindError
		n.Children = append(n.Children, p.recover(stop))
		p.accept(TokSemi)
		n.Span.End = p.prevEnd
		return n
	}
	n.Children = append(n.Children, p.parseExpr())
	if !p.at(TokSemi) {
		p.errorf(p.tok.Span, "expected %s, found %s", TokSemi, p.tok.Kind)
		if !isSync(p.tok.Kind) {
			n.Children = append(n.Children, p.recover(stop))
		}
	}
	p.accept(TokSemi)
	n.Span.End = p.prevEnd
	return n
}

func (p *parser) parseInherit() *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(syntax.KindInherit, start, start)
	if p.at(TokLParen) {
		from := p.tok.Span.Start
		p.advance()
		src := node(syntax.KindInheritFrom, from, from, p.parseExpr())
		p.expect(TokRParen)
		src.Span.End = p.prevEnd
		n.Children = append(n.Children, src)
	}
	for !p.at(TokSemi) && !isSync(p.tok.Kind) {
		attr := p.parseAttr()
		if attr == nil {
			p.advance()
			continue
		}
		n.Children = append(n.Children, attr)
	}
	p.expect(TokSemi)
	n.Span.End = p.prevEnd
	return n
}

// parseString parses a double-quoted or indented string. Its children are
// the interpolations it contains.
func (p *parser) parseString() *syntax.Node {
	start := p.tok.Span.Start
	end := TokStringEnd
	if p.at(TokIndStringStart) {
		end = TokIndStringEnd
	}
	p.advance()
	n := node(syntax.KindString, start, start)
	for !p.at(end) && !p.at(TokEOF) {
		switch p.tok.Kind {
		case TokStringContent:
			p.advance()
		case TokInterpStart:
			n.Children = append(n.Children, p.parseInterpolation())
		default:
			p.errorf(p.tok.Span, "unexpected %s in string", p.tok.Kind)
			p.advance()
		}
	}
	p.expect(end)
	n.Span.End = p.prevEnd
	return n
}

func (p *parser) parseInterpolatedPath() *syntax.Node {
	start := p.tok.Span.Start
	n := node(syntax.KindPath, start, start)
	for !p.at(TokPathEnd) && !p.at(TokEOF) {
		switch p.tok.Kind {
		case TokPathPart:
			p.advance()
		case TokInterpStart:
			n.Children = append(n.Children, p.parseInterpolation())
		default:
			p.errorf(p.tok.Span, "unexpected %s in path", p.tok.Kind)
			p.advance()
		}
	}
	n.Span.End = p.prevEnd
	p.accept(TokPathEnd)
	return n
}

func (p *parser) parseInterpolation() *syntax.Node {
	start := p.tok.Span.Start
	p.advance()
	n := node(syntax.KindInterpolation, start, start, p.parseExpr())
	if !p.at(TokInterpEnd) {
		p.errorf(p.tok.Span, "expected %s, found %s", TokInterpEnd, p.tok.Kind)
		n.Children = append(n.Children, p.recover(func(k TokenKind) bool { return k == TokInterpEnd }))
	}
	p.accept(TokInterpEnd)
	n.Span.End = p.prevEnd
	return n
}

func sortErrors(errs []syntax.ParseError) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Span.Start < errs[j].Span.Start })
}
