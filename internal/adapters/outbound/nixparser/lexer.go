package nixparser

import (
	"unicode/utf8"

	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
)

type lexMode uint8

const (
	modeExpr lexMode = iota
	modeString
	modeIndString
	modePath
)

// frame is one entry of the mode stack. depth counts unmatched '{' inside
// an expression frame so that the '}' closing an interpolation can be told
// apart from the one closing an attribute set.
type frame struct {
	mode  lexMode
	depth int
}

// Lexer splits Nix source into tokens. Strings, indented strings and
// interpolated paths are lexed as token sequences so that the expressions
// inside ${...} are visible to the parser.
type Lexer struct {
	src   []byte
	off   int
	stack []frame
	errs  []syntax.ParseError
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, stack: []frame{{mode: modeExpr}}}
}

// Errors returns the lexical errors seen so far.
func (lx *Lexer) Errors() []syntax.ParseError { return lx.errs }

// Next returns the next token. After the end of input it keeps returning TokEOF.
func (lx *Lexer) Next() Token {
	switch lx.top().mode {
	case modeString:
		return lx.scanString()
	case modeIndString:
		return lx.scanIndString()
	case modePath:
		return lx.scanPathTail()
	}
	return lx.scanExpr()
}

func (lx *Lexer) top() *frame { return &lx.stack[len(lx.stack)-1] }

func (lx *Lexer) push(m lexMode) { lx.stack = append(lx.stack, frame{mode: m}) }

func (lx *Lexer) pop() {
	if len(lx.stack) > 1 {
		lx.stack = lx.stack[:len(lx.stack)-1]
	}
}

func (lx *Lexer) errorf(start, end int, msg string) {
	lx.errs = append(lx.errs, syntax.ParseError{Span: syntax.Span{Start: start, End: end}, Message: msg})
}

func (lx *Lexer) peekByte(n int) byte {
	if i := lx.off + n; i < len(lx.src) {
		return lx.src[i]
	}
	return 0
}

func (lx *Lexer) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Span: syntax.Span{Start: start, End: lx.off}, Text: string(lx.src[start:lx.off])}
}

func (lx *Lexer) scanExpr() Token {
	lx.skipTrivia()
	start := lx.off
	if lx.off >= len(lx.src) {
		return Token{Kind: TokEOF, Span: syntax.Span{Start: start, End: start}}
	}

	if n := lx.pathLength(); n > 0 {
		lx.off += n
		if lx.peekByte(0) == '$' && lx.peekByte(1) == '{' {
			lx.push(modePath)
			return lx.token(TokPathPart, start)
		}
		return lx.token(TokPath, start)
	}

	c := lx.src[lx.off]
	switch {
	case isIdentStart(c):
		if n := lx.uriLength(); n > 0 {
			lx.off += n
			return lx.token(TokURI, start)
		}
		lx.off++
		for lx.off < len(lx.src) && isIdentChar(lx.src[lx.off]) {
			lx.off++
		}
		tok := lx.token(TokIdent, start)
		if kw, ok := keywords[tok.Text]; ok {
			tok.Kind = kw
		}
		return tok
	case isDigit(c):
		return lx.scanNumber()
	}

	switch c {
	case '{':
		lx.top().depth++
		lx.off++
		return lx.token(TokLBrace, start)
	case '}':
		lx.off++
		if f := lx.top(); f.depth > 0 {
			f.depth--
			return lx.token(TokRBrace, start)
		}
		if len(lx.stack) > 1 {
			lx.pop()
			return lx.token(TokInterpEnd, start)
		}
		return lx.token(TokRBrace, start)
	case '$':
		if lx.peekByte(1) == '{' {
			lx.off += 2
			lx.push(modeExpr)
			return lx.token(TokInterpStart, start)
		}
	case '"':
		lx.off++
		lx.push(modeString)
		return lx.token(TokStringStart, start)
	case '\'':
		if lx.peekByte(1) == '\'' {
			lx.off += 2
			lx.push(modeIndString)
			return lx.token(TokIndStringStart, start)
		}
	case '<':
		if n := lx.searchPathLength(); n > 0 {
			lx.off += n
			return lx.token(TokSearchPath, start)
		}
	case '.':
		if lx.peekByte(1) == '.' && lx.peekByte(2) == '.' {
			lx.off += 3
			return lx.token(TokEllipsis, start)
		}
	}

	if kind, n := operator(c, lx.peekByte(1)); n > 0 {
		lx.off += n
		return lx.token(kind, start)
	}

	_, size := utf8.DecodeRune(lx.src[lx.off:])
	lx.off += size
	lx.errorf(start, lx.off, "unexpected character "+string(lx.src[start:lx.off]))
	return lx.token(TokIllegal, start)
}

func operator(c, next byte) (TokenKind, int) {
	switch string([]byte{c, next}) {
	case "++":
		return TokConcat, 2
	case "//":
		return TokUpdate, 2
	case "==":
		return TokEq, 2
	case "!=":
		return TokNeq, 2
	case "<=":
		return TokLe, 2
	case ">=":
		return TokGe, 2
	case "&&":
		return TokAnd, 2
	case "||":
		return TokOrOr, 2
	case "->":
		return TokImpl, 2
	case "|>":
		return TokPipeR, 2
	case "<|":
		return TokPipeL, 2
	}
	switch c {
	case '[':
		return TokLBracket, 1
	case ']':
		return TokRBracket, 1
	case '(':
		return TokLParen, 1
	case ')':
		return TokRParen, 1
	case ';':
		return TokSemi, 1
	case ':':
		return TokColon, 1
	case ',':
		return TokComma, 1
	case '.':
		return TokDot, 1
	case '=':
		return TokAssign, 1
	case '@':
		return TokAt, 1
	case '?':
		return TokQuestion, 1
	case '+':
		return TokPlus, 1
	case '-':
		return TokMinus, 1
	case '*':
		return TokStar, 1
	case '/':
		return TokSlash, 1
	case '<':
		return TokLt, 1
	case '>':
		return TokGt, 1
	case '!':
		return TokNot, 1
	}
	return TokIllegal, 0
}

func (lx *Lexer) skipTrivia() {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.off++
		case c == '#':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.off++
			}
		case c == '/' && lx.peekByte(1) == '*':
			start := lx.off
			lx.off += 2
			for {
				if lx.off >= len(lx.src) {
					lx.errorf(start, lx.off, "unterminated comment")
					return
				}
				if lx.src[lx.off] == '*' && lx.peekByte(1) == '/' {
					lx.off += 2
					break
				}
				lx.off++
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanNumber() Token {
	start := lx.off
	kind := TokInt
	for lx.off < len(lx.src) && isDigit(lx.src[lx.off]) {
		lx.off++
	}
	if lx.peekByte(0) == '.' && isDigit(lx.peekByte(1)) {
		kind = TokFloat
		lx.off++
		for lx.off < len(lx.src) && isDigit(lx.src[lx.off]) {
			lx.off++
		}
	}
	if c := lx.peekByte(0); c == 'e' || c == 'E' {
		i := 1
		if s := lx.peekByte(1); s == '+' || s == '-' {
			i++
		}
		if isDigit(lx.peekByte(i)) {
			kind = TokFloat
			lx.off += i
			for lx.off < len(lx.src) && isDigit(lx.src[lx.off]) {
				lx.off++
			}
		}
	}
	return lx.token(kind, start)
}

// pathLength returns the length of the path literal starting at the
// current offset, or 0. A path needs at least one '/' followed by a path
// character or by an interpolation; a trailing "/${" is included so the
// interpolation starts right after the returned fragment.
func (lx *Lexer) pathLength() int {
	i := lx.off
	if lx.peekByte(0) == '~' {
		if lx.peekByte(1) != '/' {
			return 0
		}
		i++
	} else {
		for i < len(lx.src) && isPathChar(lx.src[i]) {
			i++
		}
	}

	segments := 0
	for i < len(lx.src) && lx.src[i] == '/' {
		if i+1 < len(lx.src) && isPathChar(lx.src[i+1]) {
			i++
			for i < len(lx.src) && isPathChar(lx.src[i]) {
				i++
			}
			segments++
			continue
		}
		if i+2 < len(lx.src) && lx.src[i+1] == '$' && lx.src[i+2] == '{' {
			i++
			segments++
		}
		break
	}
	if segments == 0 {
		return 0
	}
	return i - lx.off
}

// scanPathTail continues an interpolated path after its first fragment.
func (lx *Lexer) scanPathTail() Token {
	start := lx.off
	if lx.peekByte(0) == '$' && lx.peekByte(1) == '{' {
		lx.off += 2
		lx.push(modeExpr)
		return lx.token(TokInterpStart, start)
	}
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		if isPathChar(c) {
			lx.off++
			continue
		}
		if c == '/' && (isPathChar(lx.peekByte(1)) || lx.peekByte(1) == '$' && lx.peekByte(2) == '{') {
			lx.off++
			continue
		}
		break
	}
	if lx.off > start {
		return lx.token(TokPathPart, start)
	}
	lx.pop()
	return Token{Kind: TokPathEnd, Span: syntax.Span{Start: start, End: start}}
}

func (lx *Lexer) searchPathLength() int {
	i := lx.off + 1
	segStart := i
	for i < len(lx.src) {
		c := lx.src[i]
		switch {
		case isPathChar(c):
			i++
		case c == '/' && i > segStart:
			i++
			segStart = i
		case c == '>' && i > segStart:
			return i + 1 - lx.off
		default:
			return 0
		}
	}
	return 0
}

// uriLength matches scheme ':' uric+ at the current offset.
func (lx *Lexer) uriLength() int {
	i := lx.off + 1
	for i < len(lx.src) && isSchemeChar(lx.src[i]) {
		i++
	}
	if i >= len(lx.src) || lx.src[i] != ':' {
		return 0
	}
	i++
	n := 0
	for i < len(lx.src) && isURIChar(lx.src[i]) {
		i++
		n++
	}
	if n == 0 {
		return 0
	}
	return i - lx.off
}

func (lx *Lexer) scanString() Token {
	start := lx.off
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == '"':
			if lx.off > start {
				return lx.token(TokStringContent, start)
			}
			lx.off++
			lx.pop()
			return lx.token(TokStringEnd, start)
		case c == '\\':
			lx.off += 2
			if lx.off > len(lx.src) {
				lx.off = len(lx.src)
			}
		case c == '$' && lx.peekByte(1) == '{':
			if lx.off > start {
				return lx.token(TokStringContent, start)
			}
			lx.off += 2
			lx.push(modeExpr)
			return lx.token(TokInterpStart, start)
		case c == '$' && lx.peekByte(1) == '$':
			lx.off += 2
		default:
			lx.off++
		}
	}
	return lx.unterminated(start, TokStringEnd, "unterminated string")
}

func (lx *Lexer) scanIndString() Token {
	start := lx.off
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == '\'' && lx.peekByte(1) == '\'':
			switch lx.peekByte(2) {
			case '\'', '$':
				lx.off += 3
				continue
			case '\\':
				lx.off += 4
				if lx.off > len(lx.src) {
					lx.off = len(lx.src)
				}
				continue
			}
			if lx.off > start {
				return lx.token(TokStringContent, start)
			}
			lx.off += 2
			lx.pop()
			return lx.token(TokIndStringEnd, start)
		case c == '$' && lx.peekByte(1) == '{':
			if lx.off > start {
				return lx.token(TokStringContent, start)
			}
			lx.off += 2
			lx.push(modeExpr)
			return lx.token(TokInterpStart, start)
		case c == '$' && lx.peekByte(1) == '$':
			lx.off += 2
		default:
			lx.off++
		}
	}
	return lx.unterminated(start, TokIndStringEnd, "unterminated indented string")
}

// unterminated ends a string at EOF: pending content is flushed first, then
// a zero-width end token lets the parser close the string node.
func (lx *Lexer) unterminated(start int, end TokenKind, msg string) Token {
	if lx.off > start {
		return lx.token(TokStringContent, start)
	}
	lx.errorf(start, start, msg)
	lx.pop()
	return Token{Kind: end, Span: syntax.Span{Start: start, End: start}}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isIdentStart(c byte) bool { return isAlpha(c) || c == '_' }

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) || c == '\'' || c == '-' }

func isPathChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '.' || c == '_' || c == '-' || c == '+'
}

func isSchemeChar(c byte) bool { return isAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.' }

func isURIChar(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}
