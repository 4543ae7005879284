package lexer

import (
	"testing"

	"github.com/aledsdavies/pyx/pkgs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeIndentation(t *testing.T) {
	toks, err := New("if x:\n    y\nz\n").Tokenize()
	require.NoError(t, err)
	kinds := kindsOf(toks)
	require.Contains(t, kinds, token.Indent)
	require.Contains(t, kinds, token.Dedent)
	assert.Equal(t, token.EndOfInput, kinds[len(kinds)-1])
}

func TestTokenizeTabExpandsToNextMultipleOf8(t *testing.T) {
	toks, err := New("if x:\n\ty\n").Tokenize()
	require.NoError(t, err)
	kinds := kindsOf(toks)
	require.Contains(t, kinds, token.Indent)
}

func TestTokenizeInconsistentDedentFails(t *testing.T) {
	_, err := New("if x:\n    y\n  z\n").Tokenize()
	require.Error(t, err)
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	_, err := New("x = 'abc\n").Tokenize()
	require.Error(t, err)
}

func TestTokenizeCommentOnlyLinesProduceNoTokens(t *testing.T) {
	toks, err := New("# just a comment\nx\n").Tokenize()
	require.NoError(t, err)
	for _, tok := range toks {
		assert.NotEqual(t, token.Comment, tok.Kind)
	}
	var name *token.Token
	for i := range toks {
		if toks[i].Kind == token.Name {
			name = &toks[i]
			break
		}
	}
	require.NotNil(t, name)
	assert.Equal(t, "x", name.Lexeme)
	assert.Equal(t, 2, name.Start.Line)
}

func TestTokenizeTripleQuotedStringIsOneToken(t *testing.T) {
	toks, err := New("x = \"\"\"a\nb\nc\"\"\"\n").Tokenize()
	require.NoError(t, err)
	count := 0
	for _, tok := range toks {
		if tok.Kind == token.String {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTokenizeFStringIsSingleToken(t *testing.T) {
	toks, err := New(`f"{value:.2f}"` + "\n").Tokenize()
	require.NoError(t, err)
	count := 0
	for _, tok := range toks {
		if tok.Kind == token.String {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTokenizeLineContinuation(t *testing.T) {
	toks, err := New("x = 1 + \\\n    2\n").Tokenize()
	require.NoError(t, err)
	names := 0
	for _, tok := range toks {
		if tok.Kind == token.Number {
			names++
		}
	}
	assert.Equal(t, 2, names)
}

func TestTokenizeOperatorsLongestMatch(t *testing.T) {
	toks, err := New("a //= b\n").Tokenize()
	require.NoError(t, err)
	var ops []string
	for _, tok := range toks {
		if tok.Kind == token.Op {
			ops = append(ops, tok.Lexeme)
		}
	}
	require.Contains(t, ops, "//=")
}

func TestTokenizeDedentsAtEOF(t *testing.T) {
	toks, err := New("if x:\n    y\n").Tokenize()
	require.NoError(t, err)
	last := toks[len(toks)-1]
	assert.Equal(t, token.EndOfInput, last.Kind)
	found := false
	for _, tok := range toks {
		if tok.Kind == token.Dedent {
			found = true
		}
	}
	assert.True(t, found, "expected a Dedent to close the open indent level before EndOfInput")
}
