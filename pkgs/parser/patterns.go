package parser

import (
	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/token"
)

func (p *Parser) parseMatch() (ast.Stmt, error) {
	p.advance() // 'match'
	subject, err := p.parseTestListStar(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(token.Newline, "newline"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(token.Indent, "indented match body"); err != nil {
		return nil, err
	}
	var cases []ast.MatchCase
	for !p.at(token.Dedent) {
		if p.at(token.Newline) {
			p.advance()
			continue
		}
		c, err := p.parseMatchCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	p.advance() // Dedent
	return &ast.Match{Subject: subject, Cases: cases}, nil
}

func (p *Parser) parseMatchCase() (ast.MatchCase, error) {
	if _, err := p.expectKeyword("case"); err != nil {
		return ast.MatchCase{}, err
	}
	pat, err := p.parseMatchPatterns()
	if err != nil {
		return ast.MatchCase{}, err
	}
	var guard ast.Expr
	if p.eatKeyword("if") {
		guard, err = p.parseNamedExprTest()
		if err != nil {
			return ast.MatchCase{}, err
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return ast.MatchCase{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.MatchCase{}, err
	}
	return ast.MatchCase{Pattern: pat, Guard: guard, Body: body}, nil
}

// parseMatchPatterns parses a case clause's top-level pattern, folding
// an unbracketed comma-separated list into a MatchSequence.
func (p *Parser) parseMatchPatterns() (ast.Pattern, error) {
	first, err := p.parseMatchPattern()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	items := []ast.Pattern{first}
	for p.eatOp(",") {
		if p.atKeyword("if") || p.atOp(":") {
			break
		}
		item, err := p.parseMatchPattern()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ast.MatchSequence{Patterns: items}, nil
}

// parseMatchPattern is the as-pattern level: or_pattern ['as' name].
func (p *Parser) parseMatchPattern() (ast.Pattern, error) {
	pat, err := p.parseOrPattern()
	if err != nil {
		return nil, err
	}
	if p.eatKeyword("as") {
		name, err := p.expectKind(token.Name, "name")
		if err != nil {
			return nil, err
		}
		n := name.Lexeme
		return &ast.MatchAs{Pattern: pat, Name: &n}, nil
	}
	return pat, nil
}

func (p *Parser) parseOrPattern() (ast.Pattern, error) {
	first, err := p.parseClosedPattern()
	if err != nil {
		return nil, err
	}
	if !p.atOp("|") {
		return first, nil
	}
	pats := []ast.Pattern{first}
	for p.eatOp("|") {
		next, err := p.parseClosedPattern()
		if err != nil {
			return nil, err
		}
		pats = append(pats, next)
	}
	return &ast.MatchOr{Patterns: pats}, nil
}

func (p *Parser) parseClosedPattern() (ast.Pattern, error) {
	switch {
	case p.atOp("*"):
		p.advance()
		if p.atKeyword("_") {
			p.advance()
			return &ast.MatchStar{}, nil
		}
		name, err := p.expectKind(token.Name, "name")
		if err != nil {
			return nil, err
		}
		n := name.Lexeme
		return &ast.MatchStar{Name: &n}, nil

	case p.atKeyword("_"):
		p.advance()
		return &ast.MatchAs{}, nil

	case p.atOp("("):
		return p.parseGroupOrSequencePattern("(", ")")

	case p.atOp("["):
		return p.parseGroupOrSequencePattern("[", "]")

	case p.atOp("{"):
		return p.parseMappingPattern()

	case p.atKeyword("None"):
		p.advance()
		return &ast.MatchSingleton{Value: nil}, nil
	case p.atKeyword("True"):
		p.advance()
		return &ast.MatchSingleton{Value: true}, nil
	case p.atKeyword("False"):
		p.advance()
		return &ast.MatchSingleton{Value: false}, nil

	case p.atOp("-") || p.at(token.Number):
		return p.parseMatchNumberValue()

	case p.at(token.String):
		v, err := p.parseStringRun()
		if err != nil {
			return nil, err
		}
		return &ast.MatchValue{Value: v}, nil

	case p.at(token.Name):
		return p.parseNameOrClassOrCapturePattern()
	}
	return nil, p.unexpected("pattern")
}

func (p *Parser) parseMatchNumberValue() (ast.Pattern, error) {
	neg := p.eatOp("-")
	t, err := p.expectKind(token.Number, "number")
	if err != nil {
		return nil, err
	}
	v, err := parseNumberLiteral(t.Lexeme)
	if err != nil {
		return nil, err
	}
	if neg {
		v = negateNumber(v)
	}
	return &ast.MatchValue{Value: &ast.Constant{Value: v}}, nil
}

func negateNumber(v any) any {
	switch n := v.(type) {
	case int64:
		return -n
	case float64:
		return -n
	case complex128:
		return -n
	}
	return v
}

// parseGroupOrSequencePattern handles `(...)` (a single grouped
// pattern, or a sequence if it has commas) and `[...]` (always a
// sequence).
func (p *Parser) parseGroupOrSequencePattern(open, close string) (ast.Pattern, error) {
	p.advance()
	if p.atOp(close) {
		p.advance()
		return &ast.MatchSequence{}, nil
	}
	first, err := p.parseMaybeStarPattern()
	if err != nil {
		return nil, err
	}
	if open == "[" {
		items := []ast.Pattern{first}
		for p.eatOp(",") {
			if p.atOp(close) {
				break
			}
			item, err := p.parseMaybeStarPattern()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := p.expectOp(close); err != nil {
			return nil, err
		}
		return &ast.MatchSequence{Patterns: items}, nil
	}
	if p.atOp(",") {
		items := []ast.Pattern{first}
		for p.eatOp(",") {
			if p.atOp(close) {
				break
			}
			item, err := p.parseMaybeStarPattern()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := p.expectOp(close); err != nil {
			return nil, err
		}
		return &ast.MatchSequence{Patterns: items}, nil
	}
	if _, err := p.expectOp(close); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseMaybeStarPattern() (ast.Pattern, error) {
	return p.parseMatchPattern()
}

func (p *Parser) parseMappingPattern() (ast.Pattern, error) {
	p.advance() // '{'
	var keys []ast.Expr
	var patterns []ast.Pattern
	var rest *string
	for !p.atOp("}") {
		if p.atOp("**") {
			p.advance()
			name, err := p.expectKind(token.Name, "name")
			if err != nil {
				return nil, err
			}
			n := name.Lexeme
			rest = &n
		} else {
			key, err := p.parseMatchMappingKey()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(":"); err != nil {
				return nil, err
			}
			val, err := p.parseMatchPattern()
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			patterns = append(patterns, val)
		}
		if !p.eatOp(",") {
			break
		}
	}
	if _, err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return &ast.MatchMapping{Keys: keys, Patterns: patterns, Rest: rest}, nil
}

func (p *Parser) parseMatchMappingKey() (ast.Expr, error) {
	switch {
	case p.atKeyword("None"):
		p.advance()
		return &ast.Constant{Value: nil}, nil
	case p.atKeyword("True"):
		p.advance()
		return &ast.Constant{Value: true}, nil
	case p.atKeyword("False"):
		p.advance()
		return &ast.Constant{Value: false}, nil
	case p.atOp("-") || p.at(token.Number):
		neg := p.eatOp("-")
		t, err := p.expectKind(token.Number, "number")
		if err != nil {
			return nil, err
		}
		v, err := parseNumberLiteral(t.Lexeme)
		if err != nil {
			return nil, err
		}
		if neg {
			v = negateNumber(v)
		}
		return &ast.Constant{Value: v}, nil
	case p.at(token.String):
		return p.parseStringRun()
	case p.at(token.Name):
		return p.parseOrExprTrailers()
	}
	return nil, p.unexpected("mapping pattern key")
}

// parseNameOrClassOrCapturePattern handles a bare name (capture), a
// dotted name (MatchValue), and `ClassName(pos..., kw=pat...)`
// (MatchClass).
func (p *Parser) parseNameOrClassOrCapturePattern() (ast.Pattern, error) {
	t := p.advance()
	var value ast.Expr = &ast.Name{Id: t.Lexeme}
	dotted := false
	for p.atOp(".") {
		dotted = true
		p.advance()
		attr, err := p.expectKind(token.Name, "attribute name")
		if err != nil {
			return nil, err
		}
		value = &ast.Attribute{Value: value, Attr: attr.Lexeme}
	}
	if p.atOp("(") {
		patterns, kwdAttrs, kwdPatterns, err := p.parseMatchClassArgs()
		if err != nil {
			return nil, err
		}
		return &ast.MatchClass{Cls: value, Patterns: patterns, KwdAttrs: kwdAttrs, KwdPatterns: kwdPatterns}, nil
	}
	if dotted {
		return &ast.MatchValue{Value: value}, nil
	}
	return &ast.MatchAs{Name: &t.Lexeme}, nil
}

func (p *Parser) parseMatchClassArgs() ([]ast.Pattern, []string, []ast.Pattern, error) {
	p.advance() // '('
	var patterns []ast.Pattern
	var kwdAttrs []string
	var kwdPatterns []ast.Pattern
	for !p.atOp(")") {
		if p.at(token.Name) && p.peekAt(1).Kind == token.Op && p.peekAt(1).Lexeme == "=" {
			name := p.advance()
			p.advance() // '='
			pat, err := p.parseMatchPattern()
			if err != nil {
				return nil, nil, nil, err
			}
			kwdAttrs = append(kwdAttrs, name.Lexeme)
			kwdPatterns = append(kwdPatterns, pat)
		} else {
			pat, err := p.parseMatchPattern()
			if err != nil {
				return nil, nil, nil, err
			}
			patterns = append(patterns, pat)
		}
		if !p.eatOp(",") {
			break
		}
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, nil, nil, err
	}
	return patterns, kwdAttrs, kwdPatterns, nil
}
