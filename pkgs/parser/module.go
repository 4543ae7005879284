package parser

import (
	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// augOps maps each of the 13 augmented-assignment operator lexemes
// (spec §4.3) to the arithmetic operator AugAssign carries.
var augOps = map[string]ast.Operator{
	"+=": ast.Add, "-=": ast.Sub, "*=": ast.Mult, "/=": ast.Div,
	"//=": ast.FloorDiv, "%=": ast.Mod, "**=": ast.Pow,
	"&=": ast.BitAnd, "|=": ast.BitOr, "^=": ast.BitXor,
	">>=": ast.RShift, "<<=": ast.LShift, "@=": ast.MatMult,
}

func (p *Parser) parseModule() (*ast.Module, error) {
	mod := &ast.Module{}
	for !p.at(token.EndOfInput) {
		if p.at(token.Newline) {
			p.advance()
			continue
		}
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmts...)
	}
	return mod, nil
}

// parseStatement dispatches one top-level-or-block statement, which
// may itself be a `;`-separated list of simple statements on one
// logical line (spec §4.3 top-level loop).
func (p *Parser) parseStatement() ([]ast.Stmt, error) {
	switch {
	case p.atOp("@"):
		return p.parseDecorated()
	case p.atKeyword("async"):
		s, err := p.parseAsyncStatement()
		return wrap(s, err)
	case p.atKeyword("def"):
		s, err := p.parseFunctionDef(nil, false)
		return wrap(s, err)
	case p.atKeyword("class"):
		s, err := p.parseClassDef(nil)
		return wrap(s, err)
	case p.atKeyword("if"):
		s, err := p.parseIf()
		return wrap(s, err)
	case p.atKeyword("for"):
		s, err := p.parseFor(false)
		return wrap(s, err)
	case p.atKeyword("while"):
		s, err := p.parseWhile()
		return wrap(s, err)
	case p.atKeyword("with"):
		s, err := p.parseWith(false)
		return wrap(s, err)
	case p.atKeyword("try"):
		s, err := p.parseTry()
		return wrap(s, err)
	case p.atKeyword("match") && p.looksLikeMatchStatement():
		s, err := p.parseMatch()
		return wrap(s, err)
	case p.atKeyword("type") && p.peekAt(1).Kind == token.Name:
		s, err := p.parseTypeAlias()
		return wrap(s, err)
	default:
		return p.parseSimpleStatementLine()
	}
}

func wrap(s ast.Stmt, err error) ([]ast.Stmt, error) {
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{s}, nil
}

// parseSimpleStatementLine parses one or more `;`-separated simple
// statements terminated by Newline or EndOfInput.
func (p *Parser) parseSimpleStatementLine() ([]ast.Stmt, error) {
	var out []ast.Stmt
	for {
		s, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if p.eatOp(";") {
			if p.at(token.Newline) || p.at(token.EndOfInput) {
				break
			}
			continue
		}
		break
	}
	if p.at(token.Newline) {
		p.advance()
	} else if !p.at(token.EndOfInput) {
		return nil, p.unexpected("newline")
	}
	return out, nil
}

func (p *Parser) parseSimpleStatement() (ast.Stmt, error) {
	pos := p.pos0()
	switch {
	case p.atKeyword("import"):
		return p.parseImport(pos)
	case p.atKeyword("from"):
		return p.parseImportFrom(pos)
	case p.atKeyword("pass"):
		p.advance()
		return &ast.Pass{}, nil
	case p.atKeyword("break"):
		p.advance()
		return &ast.Break{}, nil
	case p.atKeyword("continue"):
		p.advance()
		return &ast.Continue{}, nil
	case p.atKeyword("return"):
		p.advance()
		if p.atStmtEnd() {
			return &ast.Return{}, nil
		}
		v, err := p.parseTestListStar(false)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: v}, nil
	case p.atKeyword("raise"):
		p.advance()
		if p.atStmtEnd() {
			return &ast.Raise{}, nil
		}
		exc, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		r := &ast.Raise{Exc: exc}
		if p.eatKeyword("from") {
			cause, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			r.Cause = cause
		}
		return r, nil
	case p.atKeyword("del"):
		p.advance()
		targets, err := p.parseExprListPlain()
		if err != nil {
			return nil, err
		}
		return &ast.Delete{Targets: targets}, nil
	case p.atKeyword("global"):
		p.advance()
		names, err := p.parseNameList()
		if err != nil {
			return nil, err
		}
		return &ast.Global{Names: names}, nil
	case p.atKeyword("nonlocal"):
		p.advance()
		names, err := p.parseNameList()
		if err != nil {
			return nil, err
		}
		return &ast.Nonlocal{Names: names}, nil
	case p.atKeyword("assert"):
		p.advance()
		test, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		a := &ast.Assert{Test: test}
		if p.eatOp(",") {
			msg, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			a.Msg = msg
		}
		return a, nil
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) atStmtEnd() bool {
	return p.at(token.Newline) || p.at(token.EndOfInput) || p.atOp(";")
}

func (p *Parser) parseNameList() ([]string, error) {
	var out []string
	for {
		t, err := p.expectKind(token.Name, "name")
		if err != nil {
			return nil, err
		}
		out = append(out, t.Lexeme)
		if !p.eatOp(",") {
			break
		}
	}
	return out, nil
}

// parseExprOrAssignStatement handles `Expr`, `Assign`, `AugAssign`, and
// `AnnAssign` (spec §4.3 Assignments), all sharing a target/expression
// prefix.
func (p *Parser) parseExprOrAssignStatement() (ast.Stmt, error) {
	first, err := p.parseTestListStar(false)
	if err != nil {
		return nil, err
	}

	if p.atOp(":") {
		p.advance()
		annotation, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		stmt := &ast.AnnAssign{Target: first, Annotation: annotation, Simple: isSimpleTarget(first)}
		if p.eatOp("=") {
			v, err := p.parseTestListStar(false)
			if err != nil {
				return nil, err
			}
			stmt.Value = v
		}
		return stmt, nil
	}

	if aug, ok := augOps[p.cur().Lexeme]; ok && p.at(token.Op) {
		p.advance()
		v, err := p.parseTestListStar(false)
		if err != nil {
			return nil, err
		}
		return &ast.AugAssign{Target: first, Op: aug, Value: v}, nil
	}

	if p.atOp("=") {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.eatOp("=") {
			v, err := p.parseTestListStar(false)
			if err != nil {
				return nil, err
			}
			if value != nil {
				targets = append(targets, value)
			}
			value = v
		}
		return &ast.Assign{Targets: targets, Value: value}, nil
	}

	return &ast.ExprStmt{Value: first}, nil
}

func isSimpleTarget(e ast.Expr) bool {
	_, ok := e.(*ast.Name)
	return ok
}

// parseImport parses `import a.b as c, d` (spec §4.3 Imports).
func (p *Parser) parseImport(pos token.Position) (ast.Stmt, error) {
	p.advance() // 'import'
	names, err := p.parseAliasList(true)
	if err != nil {
		return nil, err
	}
	return &ast.Import{Names: names}, nil
}

// parseImportFrom parses `from <dots><dotted>? import (x as y, ...)`
// and `from ... import *`.
func (p *Parser) parseImportFrom(pos token.Position) (ast.Stmt, error) {
	p.advance() // 'from'
	level := 0
	for p.atOp(".") || p.atOp("...") {
		if p.atOp("...") {
			level += 3
		} else {
			level++
		}
		p.advance()
	}
	var module *string
	if p.at(token.Name) && !p.atKeyword("import") {
		dotted, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		module = &dotted
	}
	if _, err := p.expectKeyword("import"); err != nil {
		return nil, err
	}

	stmt := &ast.ImportFrom{Module: module, Level: level}
	if p.atOp("*") {
		p.advance()
		stmt.Names = []ast.Alias{{Name: "*"}}
		return stmt, nil
	}

	paren := p.eatOp("(")
	names, err := p.parseAliasList(false)
	if err != nil {
		return nil, err
	}
	stmt.Names = names
	if paren {
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseAliasList(dotted bool) ([]ast.Alias, error) {
	var out []ast.Alias
	for {
		var name string
		var err error
		if dotted {
			name, err = p.parseDottedName()
		} else {
			t, e := p.expectKind(token.Name, "name")
			name, err = t.Lexeme, e
		}
		if err != nil {
			return nil, err
		}
		alias := ast.Alias{Name: name}
		if p.eatKeyword("as") {
			t, err := p.expectKind(token.Name, "name")
			if err != nil {
				return nil, err
			}
			asname := t.Lexeme
			alias.AsName = &asname
		}
		out = append(out, alias)
		if !p.eatOp(",") {
			break
		}
		if p.atOp(")") {
			break
		}
	}
	return out, nil
}

func (p *Parser) parseDottedName() (string, error) {
	t, err := p.expectKind(token.Name, "name")
	if err != nil {
		return "", err
	}
	name := t.Lexeme
	for p.atOp(".") {
		p.advance()
		part, err := p.expectKind(token.Name, "name")
		if err != nil {
			return "", err
		}
		name += "." + part.Lexeme
	}
	return name, nil
}

// looksLikeMatchStatement disambiguates the `match` soft keyword: it is
// a match-statement header if, scanning forward at bracket depth 0, the
// logical line's first depth-0 operator is not an assignment form and
// a depth-0 `:` appears before Newline/EndOfInput.
func (p *Parser) looksLikeMatchStatement() bool {
	next := p.peekAt(1)
	if next.Kind == token.Op {
		switch next.Lexeme {
		case "=", ".", ",", ":", ":=":
			return false
		}
		if _, ok := augOps[next.Lexeme]; ok {
			return false
		}
	}
	depth := 0
	for i := p.pos + 1; ; i++ {
		t := p.peekAt(i - p.pos)
		switch t.Kind {
		case token.Newline, token.EndOfInput:
			return false
		case token.Op:
			switch t.Lexeme {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ":":
				if depth == 0 {
					return true
				}
			case "=":
				if depth == 0 {
					if _, ok := augOps[t.Lexeme]; !ok {
						return false
					}
				}
			}
		}
	}
}
