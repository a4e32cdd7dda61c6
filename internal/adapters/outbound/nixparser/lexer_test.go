package nixparser_test

import (
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	"github.com/stretchr/testify/assert"
)

func kinds(src string) []nixparser.TokenKind {
	lx := nixparser.NewLexer([]byte(src))
	var out []nixparser.TokenKind
	for {
		tok := lx.Next()
		if tok.Kind == nixparser.TokEOF {
			return out
		}
		out = append(out, tok.Kind)
	}
}

func TestLexer_SelectChain(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokIdent, nixparser.TokDot, nixparser.TokIdent, nixparser.TokDot, nixparser.TokIdent,
	}, kinds("registry.home.alice"))
}

func TestLexer_KeywordsAndOperators(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokLet, nixparser.TokIdent, nixparser.TokAssign, nixparser.TokInt, nixparser.TokSemi,
		nixparser.TokIn, nixparser.TokIdent, nixparser.TokUpdate, nixparser.TokLBrace, nixparser.TokRBrace,
	}, kinds("let a = 1; in a // { }"))

	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokIdent, nixparser.TokConcat, nixparser.TokIdent, nixparser.TokImpl,
		nixparser.TokIdent, nixparser.TokPipeR, nixparser.TokIdent,
	}, kinds("a ++ b -> c |> d"))
}

func TestLexer_IdentifiersWithDashesAndQuotes(t *testing.T) {
	lx := nixparser.NewLexer([]byte("foo-bar x'"))
	assert.Equal(t, "foo-bar", lx.Next().Text)
	assert.Equal(t, "x'", lx.Next().Text)
}

func TestLexer_Comments(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{nixparser.TokIdent, nixparser.TokIdent},
		kinds("# line comment\na /* block\ncomment */ b"))
}

func TestLexer_Paths(t *testing.T) {
	tests := []struct {
		src  string
		kind nixparser.TokenKind
	}{
		{"./foo.nix", nixparser.TokPath},
		{"../a/b", nixparser.TokPath},
		{"/etc/nixos", nixparser.TokPath},
		{"~/dotfiles", nixparser.TokPath},
		{"<nixpkgs>", nixparser.TokSearchPath},
		{"<nixpkgs/lib>", nixparser.TokSearchPath},
		{"https://example.org/x.tar.gz", nixparser.TokURI},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			lx := nixparser.NewLexer([]byte(tt.src))
			tok := lx.Next()
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, tt.src, tok.Text)
			assert.Equal(t, nixparser.TokEOF, lx.Next().Kind)
		})
	}
}

func TestLexer_DivisionIsNotAPath(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{nixparser.TokIdent, nixparser.TokSlash, nixparser.TokIdent},
		kinds("a / b"))
}

func TestLexer_InterpolatedPath(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokPathPart, nixparser.TokInterpStart, nixparser.TokIdent, nixparser.TokInterpEnd,
		nixparser.TokPathPart, nixparser.TokPathEnd,
	}, kinds("./hosts/${name}.nix"))
}

func TestLexer_StringInterpolation(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokStringStart, nixparser.TokStringContent, nixparser.TokInterpStart,
		nixparser.TokIdent, nixparser.TokDot, nixparser.TokIdent, nixparser.TokInterpEnd,
		nixparser.TokStringEnd,
	}, kinds(`"user ${registry.alice}"`))
}

func TestLexer_BracesInsideInterpolation(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokStringStart, nixparser.TokInterpStart,
		nixparser.TokLBrace, nixparser.TokIdent, nixparser.TokAssign, nixparser.TokInt, nixparser.TokSemi, nixparser.TokRBrace,
		nixparser.TokDot, nixparser.TokIdent,
		nixparser.TokInterpEnd, nixparser.TokStringEnd,
	}, kinds(`"${ { a = 1; }.a }"`))
}

func TestLexer_StringEscapes(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokStringStart, nixparser.TokStringContent, nixparser.TokStringEnd,
	}, kinds(`"a \" $${x} \${y}"`))

	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokIndStringStart, nixparser.TokStringContent, nixparser.TokIndStringEnd,
	}, kinds("''\n  a ''' ''${x} ''\\n\n''"))
}

func TestLexer_IndentedStringInterpolation(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{
		nixparser.TokIndStringStart, nixparser.TokStringContent, nixparser.TokInterpStart,
		nixparser.TokIdent, nixparser.TokInterpEnd, nixparser.TokStringContent, nixparser.TokIndStringEnd,
	}, kinds("''\n  ${x}\n''"))
}

func TestLexer_UnterminatedString(t *testing.T) {
	lx := nixparser.NewLexer([]byte(`"abc`))
	assert.Equal(t, nixparser.TokStringStart, lx.Next().Kind)
	assert.Equal(t, nixparser.TokStringContent, lx.Next().Kind)
	assert.Equal(t, nixparser.TokStringEnd, lx.Next().Kind)
	assert.Equal(t, nixparser.TokEOF, lx.Next().Kind)
	assert.Len(t, lx.Errors(), 1)
}

func TestLexer_Numbers(t *testing.T) {
	assert.Equal(t, []nixparser.TokenKind{nixparser.TokInt, nixparser.TokFloat, nixparser.TokFloat},
		kinds("42 3.14 1e10"))
}

func TestLexer_IllegalCharacter(t *testing.T) {
	lx := nixparser.NewLexer([]byte("a % b"))
	assert.Equal(t, nixparser.TokIdent, lx.Next().Kind)
	tok := lx.Next()
	assert.Equal(t, nixparser.TokIllegal, tok.Kind)
	assert.Equal(t, "%", tok.Text)
	assert.Equal(t, nixparser.TokIdent, lx.Next().Kind)
	assert.Len(t, lx.Errors(), 1)
}
