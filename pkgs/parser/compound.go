package parser

import (
	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// parseDecorated collects one or more bottom-up `@expr` decorators
// (spec §4.3: "parsed bottom-up and attached in source order") then
// dispatches to the def/class/async-def they decorate.
func (p *Parser) parseDecorated() ([]ast.Stmt, error) {
	var decorators []ast.Expr
	for p.atOp("@") {
		p.advance()
		expr, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, expr)
		if _, err := p.expectKind(token.Newline, "newline"); err != nil {
			return nil, err
		}
	}

	var stmt ast.Stmt
	var err error
	switch {
	case p.atKeyword("def"):
		stmt, err = p.parseFunctionDef(decorators, false)
	case p.atKeyword("class"):
		stmt, err = p.parseClassDef(decorators)
	case p.atKeyword("async"):
		p.advance()
		if _, e := p.expectKeyword("def"); e != nil {
			return nil, e
		}
		stmt, err = p.parseFunctionDef(decorators, true)
	default:
		return nil, p.unexpected("def, class, or async def")
	}
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{stmt}, nil
}

func (p *Parser) parseAsyncStatement() (ast.Stmt, error) {
	p.advance() // 'async'
	switch {
	case p.atKeyword("def"):
		return p.parseFunctionDef(nil, true)
	case p.atKeyword("for"):
		return p.parseFor(true)
	case p.atKeyword("with"):
		return p.parseWith(true)
	default:
		return nil, p.unexpected("def, for, or with after async")
	}
}

func (p *Parser) parseFunctionDef(decorators []ast.Expr, isAsync bool) (ast.Stmt, error) {
	p.advance() // 'def'
	name, err := p.expectKind(token.Name, "function name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseOptionalTypeParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("("); err != nil {
		return nil, err
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	var returns ast.Expr
	if p.eatOp("->") {
		returns, err = p.parseTest()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if isAsync {
		return &ast.AsyncFunctionDef{Name: name.Lexeme, Args: args, Body: body, Decorators: decorators, Returns: returns, TypeParams: typeParams}, nil
	}
	return &ast.FunctionDef{Name: name.Lexeme, Args: args, Body: body, Decorators: decorators, Returns: returns, TypeParams: typeParams}, nil
}

// parseArguments parses the parameter list of spec §4.3 (positional,
// bare-`*`/`*name` switch to keyword-only, `**name` terminates, `/`
// positional-only marker accepted and folded into Args since the AST
// has no posonlyargs field to carry it separately).
func (p *Parser) parseArguments() (ast.Arguments, error) {
	var args ast.Arguments
	kwOnly := false

	for !p.atOp(")") {
		switch {
		case p.atOp("/"):
			p.advance()
		case p.atOp("**"):
			p.advance()
			a, err := p.parseOneArg()
			if err != nil {
				return args, err
			}
			args.Kwarg = &a
		case p.atOp("*"):
			p.advance()
			kwOnly = true
			if p.at(token.Name) {
				a, err := p.parseOneArg()
				if err != nil {
					return args, err
				}
				args.Vararg = &a
			}
		default:
			a, err := p.parseOneArg()
			if err != nil {
				return args, err
			}
			var def ast.Expr
			if p.eatOp("=") {
				def, err = p.parseTest()
				if err != nil {
					return args, err
				}
			}
			if kwOnly {
				args.KwOnlyArgs = append(args.KwOnlyArgs, a)
				args.KwDefaults = append(args.KwDefaults, def)
			} else {
				args.Args = append(args.Args, a)
				if def != nil {
					args.Defaults = append(args.Defaults, def)
				}
			}
		}
		if !p.eatOp(",") {
			break
		}
	}
	return args, nil
}

func (p *Parser) parseOneArg() (ast.Arg, error) {
	name, err := p.expectKind(token.Name, "parameter name")
	if err != nil {
		return ast.Arg{}, err
	}
	arg := ast.Arg{Arg: name.Lexeme}
	if p.eatOp(":") {
		ann, err := p.parseTest()
		if err != nil {
			return ast.Arg{}, err
		}
		arg.Annotation = ann
	}
	return arg, nil
}

// parseOptionalTypeParams parses a PEP 695 `[T, *Ts, **P]` clause,
// returning nil when absent.
func (p *Parser) parseOptionalTypeParams() ([]ast.TypeParam, error) {
	if !p.atOp("[") {
		return nil, nil
	}
	p.advance()
	var out []ast.TypeParam
	for !p.atOp("]") {
		switch {
		case p.atOp("**"):
			p.advance()
			name, err := p.expectKind(token.Name, "name")
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.ParamSpec{Name: name.Lexeme})
		case p.atOp("*"):
			p.advance()
			name, err := p.expectKind(token.Name, "name")
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.TypeVarTuple{Name: name.Lexeme})
		default:
			name, err := p.expectKind(token.Name, "name")
			if err != nil {
				return nil, err
			}
			tv := &ast.TypeVar{Name: name.Lexeme}
			if p.eatOp(":") {
				bound, err := p.parseTest()
				if err != nil {
					return nil, err
				}
				tv.Bound = bound
			}
			out = append(out, tv)
		}
		if !p.eatOp(",") {
			break
		}
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseClassDef(decorators []ast.Expr) (ast.Stmt, error) {
	p.advance() // 'class'
	name, err := p.expectKind(token.Name, "class name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseOptionalTypeParams()
	if err != nil {
		return nil, err
	}
	var bases []ast.Expr
	var keywords []ast.Keyword
	if p.eatOp("(") {
		for !p.atOp(")") {
			if p.atOp("**") {
				p.advance()
				v, err := p.parseTest()
				if err != nil {
					return nil, err
				}
				keywords = append(keywords, ast.Keyword{Value: v})
			} else if p.at(token.Name) && p.peekAt(1).Kind == token.Op && p.peekAt(1).Lexeme == "=" {
				nameTok := p.advance()
				p.advance() // '='
				v, err := p.parseTest()
				if err != nil {
					return nil, err
				}
				kwname := nameTok.Lexeme
				keywords = append(keywords, ast.Keyword{Arg: &kwname, Value: v})
			} else {
				v, err := p.parseTest()
				if err != nil {
					return nil, err
				}
				bases = append(bases, v)
			}
			if !p.eatOp(",") {
				break
			}
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ClassDef{Name: name.Lexeme, Bases: bases, Keywords: keywords, Body: body, Decorators: decorators, TypeParams: typeParams}, nil
}

// parseBlock parses a compound statement's body: either an inline
// simple-statement list, or Newline+Indent+statements+Dedent (spec
// §4.3 Compound-statement bodies).
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if !p.at(token.Newline) {
		return p.parseSimpleStatementLine()
	}
	p.advance()
	if _, err := p.expectKind(token.Indent, "indented block"); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for !p.at(token.Dedent) {
		if p.at(token.Newline) {
			p.advance()
			continue
		}
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	p.advance() // Dedent
	return body, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance() // 'if'
	test, err := p.parseNamedExprTest()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Test: test, Body: body}
	switch {
	case p.atKeyword("elif"):
		elif, err := p.parseElif()
		if err != nil {
			return nil, err
		}
		stmt.Orelse = []ast.Stmt{elif}
	case p.atKeyword("else"):
		p.advance()
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Orelse = orelse
	}
	return stmt, nil
}

// parseElif mirrors parseIf but starting from the `elif` keyword,
// nesting the chain into Orelse (spec §4.3: "elif becomes nested If").
func (p *Parser) parseElif() (ast.Stmt, error) {
	p.advance() // 'elif'
	test, err := p.parseNamedExprTest()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Test: test, Body: body}
	switch {
	case p.atKeyword("elif"):
		elif, err := p.parseElif()
		if err != nil {
			return nil, err
		}
		stmt.Orelse = []ast.Stmt{elif}
	case p.atKeyword("else"):
		p.advance()
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Orelse = orelse
	}
	return stmt, nil
}

func (p *Parser) parseFor(isAsync bool) (ast.Stmt, error) {
	p.advance() // 'for'
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseTestListStar(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orelse []ast.Stmt
	if p.eatKeyword("else") {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		orelse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	if isAsync {
		return &ast.AsyncFor{Target: target, Iter: iter, Body: body, Orelse: orelse}, nil
	}
	return &ast.For{Target: target, Iter: iter, Body: body, Orelse: orelse}, nil
}

// parseTargetList parses a for-loop target, folding a comma-separated
// list into a Tuple (spec §4.3: "target may be a comma-separated
// tuple... may include starred unpacking").
func (p *Parser) parseTargetList() (ast.Expr, error) {
	first, err := p.parseTargetItem()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.eatOp(",") {
		if p.atKeyword("in") {
			break
		}
		item, err := p.parseTargetItem()
		if err != nil {
			return nil, err
		}
		elts = append(elts, item)
	}
	return &ast.Tuple{Elts: elts}, nil
}

func (p *Parser) parseTargetItem() (ast.Expr, error) {
	if p.atOp("*") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Value: v}, nil
	}
	return p.parseOrExprTrailers()
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance() // 'while'
	test, err := p.parseNamedExprTest()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orelse []ast.Stmt
	if p.eatKeyword("else") {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		orelse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.While{Test: test, Body: body, Orelse: orelse}, nil
}

func (p *Parser) parseWith(isAsync bool) (ast.Stmt, error) {
	p.advance() // 'with'
	paren := p.eatOp("(")
	var items []ast.WithItem
	for {
		ctx, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		item := ast.WithItem{ContextExpr: ctx}
		if p.eatKeyword("as") {
			target, err := p.parseOrExprTrailers()
			if err != nil {
				return nil, err
			}
			item.OptionalVars = target
		}
		items = append(items, item)
		if !p.eatOp(",") {
			break
		}
		if paren && p.atOp(")") {
			break
		}
	}
	if paren {
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if isAsync {
		return &ast.AsyncWith{Items: items, Body: body}, nil
	}
	return &ast.With{Items: items, Body: body}, nil
}

func (p *Parser) parseTry() (ast.Stmt, error) {
	p.advance() // 'try'
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.Try{Body: body}
	for p.atKeyword("except") {
		h, err := p.parseExceptHandler()
		if err != nil {
			return nil, err
		}
		stmt.Handlers = append(stmt.Handlers, h)
	}
	if p.eatKeyword("else") {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		stmt.Orelse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	if p.eatKeyword("finally") {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		stmt.Finalbody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseExceptHandler() (ast.ExceptHandler, error) {
	p.advance() // 'except'
	p.eatOp("*") // except* (exception groups), treated identically
	var h ast.ExceptHandler
	if !p.atOp(":") {
		exc, err := p.parseTest()
		if err != nil {
			return h, err
		}
		h.Type_ = exc
		if p.eatKeyword("as") {
			name, err := p.expectKind(token.Name, "name")
			if err != nil {
				return h, err
			}
			n := name.Lexeme
			h.Name = &n
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return h, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return h, err
	}
	h.Body = body
	return h, nil
}

func (p *Parser) parseTypeAlias() (ast.Stmt, error) {
	p.advance() // 'type'
	name, err := p.expectKind(token.Name, "name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseOptionalTypeParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	value, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	return &ast.TypeAliasStmt{Name: name.Lexeme, TypeParams: typeParams, Value: value}, nil
}
