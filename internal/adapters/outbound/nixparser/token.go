package nixparser

import (
	"fmt"

	"github.com/imp-refactor/imp-refactor/internal/domain/syntax"
)

// TokenKind classifies a lexical token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokIllegal

	TokIdent
	TokInt
	TokFloat
	TokURI
	TokPath       // ./a/b, /abs, ~/x, a/b
	TokPathPart   // path fragment followed by an interpolation
	TokPathEnd    // zero-width end of an interpolated path
	TokSearchPath // <nixpkgs>

	TokStringStart    // "
	TokStringEnd      // "
	TokIndStringStart // ''
	TokIndStringEnd   // ''
	TokStringContent
	TokInterpStart // ${
	TokInterpEnd   // } closing an interpolation

	// keywords
	TokLet
	TokIn
	TokIf
	TokThen
	TokElse
	TokAssert
	TokWith
	TokRec
	TokInherit
	TokOr

	// punctuation
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokLParen
	TokRParen
	TokSemi
	TokColon
	TokComma
	TokDot
	TokEllipsis
	TokAssign
	TokAt
	TokQuestion

	// operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokConcat // ++
	TokUpdate // //
	TokEq     // ==
	TokNeq    // !=
	TokLt     // <
	TokGt     // >
	TokLe     // <=
	TokGe     // >=
	TokAnd    // &&
	TokOrOr   // ||
	TokImpl   // ->
	TokNot    // !
	TokPipeR  // |>
	TokPipeL  // <|
)

var keywords = map[string]TokenKind{
	"let":     TokLet,
	"in":      TokIn,
	"if":      TokIf,
	"then":    TokThen,
	"else":    TokElse,
	"assert":  TokAssert,
	"with":    TokWith,
	"rec":     TokRec,
	"inherit": TokInherit,
	"or":      TokOr,
}

var tokenNames = map[TokenKind]string{
	TokEOF:            "end of file",
	TokIllegal:        "illegal character",
	TokIdent:          "identifier",
	TokInt:            "integer",
	TokFloat:          "float",
	TokURI:            "URI",
	TokPath:           "path",
	TokPathPart:       "path",
	TokPathEnd:        "end of path",
	TokSearchPath:     "search path",
	TokStringStart:    `'"'`,
	TokStringEnd:      `'"'`,
	TokIndStringStart: `"''"`,
	TokIndStringEnd:   `"''"`,
	TokStringContent:  "string content",
	TokInterpStart:    "'${'",
	TokInterpEnd:      "'}'",
	TokLet:            "'let'",
	TokIn:             "'in'",
	TokIf:             "'if'",
	TokThen:           "'then'",
	TokElse:           "'else'",
	TokAssert:         "'assert'",
	TokWith:           "'with'",
	TokRec:            "'rec'",
	TokInherit:        "'inherit'",
	TokOr:             "'or'",
	TokLBrace:         "'{'",
	TokRBrace:         "'}'",
	TokLBracket:       "'['",
	TokRBracket:       "']'",
	TokLParen:         "'('",
	TokRParen:         "')'",
	TokSemi:           "';'",
	TokColon:          "':'",
	TokComma:          "','",
	TokDot:            "'.'",
	TokEllipsis:       "'...'",
	TokAssign:         "'='",
	TokAt:             "'@'",
	TokQuestion:       "'?'",
	TokPlus:           "'+'",
	TokMinus:          "'-'",
	TokStar:           "'*'",
	TokSlash:          "'/'",
	TokConcat:         "'++'",
	TokUpdate:         "'//'",
	TokEq:             "'=='",
	TokNeq:            "'!='",
	TokLt:             "'<'",
	TokGt:             "'>'",
	TokLe:             "'<='",
	TokGe:             "'>='",
	TokAnd:            "'&&'",
	TokOrOr:           "'||'",
	TokImpl:           "'->'",
	TokNot:            "'!'",
	TokPipeR:          "'|>'",
	TokPipeL:          "'<|'",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", k)
}

// Token is a lexical token with its byte span. Text is the source slice.
type Token struct {
	Kind TokenKind
	Span syntax.Span
	Text string
}
