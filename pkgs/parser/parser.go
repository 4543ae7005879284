// Package parser implements the recursive-descent Python 3.12 parser of
// spec §4.3: a hand-written grammar driven by pkgs/lexer's token stream,
// producing the pkgs/ast tree. There is no error recovery — the first
// unexpected token aborts with a positioned pyxerrors.PyxError (spec
// §7); callers that want partial results on bad input are out of
// scope.
package parser

import (
	"fmt"

	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/lexer"
	"github.com/aledsdavies/pyx/pkgs/pyxerrors"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// Parser holds the full token stream for src and a cursor into it. The
// tokenizer runs to completion up front (spec §5: resource footprint is
// O(source length) for tokens), so the parser itself never touches the
// lexer again.
type Parser struct {
	src  string
	toks []token.Token
	pos  int
}

// New tokenizes src and returns a Parser positioned at its first token.
func New(src string) (*Parser, error) {
	lx := lexer.New(src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{src: src, toks: toks}, nil
}

// ParseModule tokenizes and parses src as a full module (spec §4.3,
// §6: parse(source) → Module).
func ParseModule(src string) (*ast.Module, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	return p.parseModule()
}

// ParseExpression tokenizes and parses src as a single expression, no
// surrounding statement machinery (spec §4.3, §6).
func ParseExpression(src string) (ast.Expr, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseTestListStar(false)
	if err != nil {
		return nil, err
	}
	for p.at(token.Newline) {
		p.advance()
	}
	if !p.at(token.EndOfInput) {
		return nil, p.unexpected("end of expression")
	}
	return expr, nil
}

// ---------------------------------------------------------------------
// Token cursor helpers
// ---------------------------------------------------------------------

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) atOp(lexeme string) bool {
	t := p.cur()
	return t.Kind == token.Op && t.Lexeme == lexeme
}

func (p *Parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == token.Name && t.Lexeme == kw
}

func (p *Parser) atAnyKeyword(kws ...string) bool {
	for _, kw := range kws {
		if p.atKeyword(kw) {
			return true
		}
	}
	return false
}

func (p *Parser) eatOp(lexeme string) bool {
	if p.atOp(lexeme) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) eatKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectOp(lexeme string) (token.Token, error) {
	if !p.atOp(lexeme) {
		return token.Token{}, p.unexpected("%q", lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(kw string) (token.Token, error) {
	if !p.atKeyword(kw) {
		return token.Token{}, p.unexpected("%q", kw)
	}
	return p.advance(), nil
}

func (p *Parser) expectKind(k token.Kind, what string) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.unexpected("%s", what)
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(format string, args ...any) error {
	expected := fmt.Sprintf(format, args...)
	return pyxerrors.NewUnexpectedToken(p.src, expected, p.cur())
}

func (p *Parser) pos0() token.Position {
	return p.cur().Start
}
