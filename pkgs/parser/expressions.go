package parser

import (
	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/token"
)

// ---------------------------------------------------------------------
// Expression lists
// ---------------------------------------------------------------------

// parseTestListStar parses a comma-separated list of (possibly starred)
// test expressions, folding two-or-more into a Tuple, used for both
// assignment sides and bare expression statements (spec §4.3).
// noCond restricts each item to or-test level (no ternary/walrus),
// as required inside comprehension `for`/`if` clauses.
func (p *Parser) parseTestListStar(noCond bool) (ast.Expr, error) {
	first, err := p.parseStarOrTest(noCond)
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.eatOp(",") {
		if p.terminatesExprList() {
			break
		}
		item, err := p.parseStarOrTest(noCond)
		if err != nil {
			return nil, err
		}
		elts = append(elts, item)
	}
	return &ast.Tuple{Elts: elts}, nil
}

func (p *Parser) terminatesExprList() bool {
	if p.at(token.Newline) || p.at(token.EndOfInput) {
		return true
	}
	if p.at(token.Op) {
		switch p.cur().Lexeme {
		case "=", ":", ")", "]", "}", ";":
			return true
		}
		if _, ok := augOps[p.cur().Lexeme]; ok {
			return true
		}
	}
	if p.atAnyKeyword("in") {
		return true
	}
	return false
}

func (p *Parser) parseStarOrTest(noCond bool) (ast.Expr, error) {
	if p.atOp("*") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Value: v}, nil
	}
	if noCond {
		return p.parseOrTest()
	}
	return p.parseNamedExprTest()
}

// parseExprListPlain parses `del`'s target list: plain postfix
// expressions (optionally starred), not folded into a Tuple.
func (p *Parser) parseExprListPlain() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		item, err := p.parseTargetItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if !p.eatOp(",") {
			break
		}
		if p.at(token.Newline) || p.at(token.EndOfInput) {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------
// Precedence climbing (spec §4.3: low → high, walrus > ternary > or >
// and > not > comparisons > | > ^ > & > shift > +- > */ > unary > ** >
// await > atom)
// ---------------------------------------------------------------------

func (p *Parser) parseNamedExprTest() (ast.Expr, error) {
	expr, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	if p.eatOp(":=") {
		value, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		return &ast.NamedExpr{Target: expr, Value: value}, nil
	}
	return expr, nil
}

func (p *Parser) parseTest() (ast.Expr, error) {
	if p.atKeyword("lambda") {
		return p.parseLambda()
	}
	body, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}
	if p.eatKeyword("if") {
		test, err := p.parseOrTest()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("else"); err != nil {
			return nil, err
		}
		orelse, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		return &ast.IfExp{Test: test, Body: body, Orelse: orelse}, nil
	}
	return body, nil
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	p.advance() // 'lambda'
	var args ast.Arguments
	var err error
	if !p.atOp(":") {
		args, err = p.parseLambdaArguments()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Args: args, Body: body}, nil
}

func (p *Parser) parseLambdaArguments() (ast.Arguments, error) {
	var args ast.Arguments
	kwOnly := false
	for !p.atOp(":") {
		switch {
		case p.atOp("/"):
			p.advance()
		case p.atOp("**"):
			p.advance()
			name, err := p.expectKind(token.Name, "parameter name")
			if err != nil {
				return args, err
			}
			a := ast.Arg{Arg: name.Lexeme}
			args.Kwarg = &a
		case p.atOp("*"):
			p.advance()
			kwOnly = true
			if p.at(token.Name) {
				name, err := p.expectKind(token.Name, "parameter name")
				if err != nil {
					return args, err
				}
				a := ast.Arg{Arg: name.Lexeme}
				args.Vararg = &a
			}
		default:
			name, err := p.expectKind(token.Name, "parameter name")
			if err != nil {
				return args, err
			}
			a := ast.Arg{Arg: name.Lexeme}
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

func (p *Parser) parseOrTest() (ast.Expr, error) {
	first, err := p.parseAndTest()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("or") {
		return first, nil
	}
	values := []ast.Expr{first}
	for p.eatKeyword("or") {
		v, err := p.parseAndTest()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &ast.BoolOp{Op: ast.Or, Values: values}, nil
}

func (p *Parser) parseAndTest() (ast.Expr, error) {
	first, err := p.parseNotTest()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("and") {
		return first, nil
	}
	values := []ast.Expr{first}
	for p.eatKeyword("and") {
		v, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &ast.BoolOp{Op: ast.And, Values: values}, nil
}

func (p *Parser) parseNotTest() (ast.Expr, error) {
	if p.atKeyword("not") {
		p.advance()
		operand, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.Not, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []ast.CompareOp
	var comparators []ast.Expr
	for {
		op, ok, err := p.tryComparisonOp()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	return &ast.Compare{Left: left, Ops: ops, Comparators: comparators}, nil
}

func (p *Parser) tryComparisonOp() (ast.CompareOp, bool, error) {
	switch {
	case p.atOp("<"):
		p.advance()
		return ast.Lt, true, nil
	case p.atOp(">"):
		p.advance()
		return ast.Gt, true, nil
	case p.atOp("=="):
		p.advance()
		return ast.Eq, true, nil
	case p.atOp(">="):
		p.advance()
		return ast.GtE, true, nil
	case p.atOp("<="):
		p.advance()
		return ast.LtE, true, nil
	case p.atOp("!="):
		p.advance()
		return ast.NotEq, true, nil
	case p.atKeyword("in"):
		p.advance()
		return ast.In, true, nil
	case p.atKeyword("not") && p.peekAt(1).Kind == token.Name && p.peekAt(1).Lexeme == "in":
		p.advance()
		p.advance()
		return ast.NotIn, true, nil
	case p.atKeyword("is"):
		p.advance()
		if p.eatKeyword("not") {
			return ast.IsNot, true, nil
		}
		return ast.Is, true, nil
	}
	return 0, false, nil
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseBitXor, map[string]ast.Operator{"|": ast.BitOr})
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseBitAnd, map[string]ast.Operator{"^": ast.BitXor})
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseShift, map[string]ast.Operator{"&": ast.BitAnd})
}

func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseArith, map[string]ast.Operator{"<<": ast.LShift, ">>": ast.RShift})
}

func (p *Parser) parseArith() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseTerm, map[string]ast.Operator{"+": ast.Add, "-": ast.Sub})
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.parseBinOpChain(p.parseFactor, map[string]ast.Operator{
		"*": ast.Mult, "/": ast.Div, "//": ast.FloorDiv, "%": ast.Mod, "@": ast.MatMult,
	})
}

// parseBinOpChain left-folds a run of same-tier binary operators,
// consulting ops for each candidate operator lexeme.
func (p *Parser) parseBinOpChain(next func() (ast.Expr, error), ops map[string]ast.Operator) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.at(token.Op) {
		op, ok := ops[p.cur().Lexeme]
		if !ok {
			break
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	switch {
	case p.atOp("+"):
		p.advance()
		v, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UAdd, Operand: v}, nil
	case p.atOp("-"):
		p.advance()
		v, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.USub, Operand: v}, nil
	case p.atOp("~"):
		p.advance()
		v, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.Invert, Operand: v}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Expr, error) {
	base, err := p.parseAwaitAtom()
	if err != nil {
		return nil, err
	}
	if p.atOp("**") {
		p.advance()
		exp, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Left: base, Op: ast.Pow, Right: exp}, nil
	}
	return base, nil
}

func (p *Parser) parseAwaitAtom() (ast.Expr, error) {
	if p.atKeyword("await") {
		p.advance()
		v, err := p.parseOrExprTrailers()
		if err != nil {
			return nil, err
		}
		return &ast.Await{Value: v}, nil
	}
	return p.parseOrExprTrailers()
}

// parseOrExpr parses the operand of `*expr` unpacking and `**expr`
// dict spreads. It delegates to parseOrTest, so the operand is parsed
// at boolean-or level (`*a or b` is accepted), not at bitwise-or level.
func (p *Parser) parseOrExpr() (ast.Expr, error) {
	return p.parseOrTest()
}

// ---------------------------------------------------------------------
// Atoms and trailers
// ---------------------------------------------------------------------

// parseOrExprTrailers parses an atom followed by zero or more
// call/subscript/attribute trailers (spec §4.3 "atom with trailers").
func (p *Parser) parseOrExprTrailers() (ast.Expr, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("("):
			args, keywords, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			atom = &ast.Call{Func: atom, Args: args, Keywords: keywords}
		case p.atOp("["):
			sl, err := p.parseSubscript()
			if err != nil {
				return nil, err
			}
			atom = &ast.Subscript{Value: atom, Slice: sl}
		case p.atOp("."):
			p.advance()
			name, err := p.expectKind(token.Name, "attribute name")
			if err != nil {
				return nil, err
			}
			atom = &ast.Attribute{Value: atom, Attr: name.Lexeme}
		default:
			return atom, nil
		}
	}
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	switch {
	case p.at(token.Name):
		return p.parseNameAtom()
	case p.at(token.Number):
		t := p.advance()
		v, err := parseNumberLiteral(t.Lexeme)
		if err != nil {
			return nil, err
		}
		return &ast.Constant{Value: v}, nil
	case p.at(token.String):
		return p.parseStringRun()
	case p.atOp("("):
		return p.parseParenAtom()
	case p.atOp("["):
		return p.parseListAtom()
	case p.atOp("{"):
		return p.parseDictOrSetAtom()
	case p.atOp("..."):
		p.advance()
		return &ast.Constant{Value: ast.Ellipsis{}}, nil
	}
	return nil, p.unexpected("expression")
}

func (p *Parser) parseNameAtom() (ast.Expr, error) {
	if p.atKeyword("yield") {
		return p.parseYieldExpr()
	}
	t := p.advance()
	switch t.Lexeme {
	case "True":
		return &ast.Constant{Value: true}, nil
	case "False":
		return &ast.Constant{Value: false}, nil
	case "None":
		return &ast.Constant{Value: nil}, nil
	}
	return &ast.Name{Id: t.Lexeme}, nil
}

func (p *Parser) parseYieldExpr() (ast.Expr, error) {
	p.advance() // 'yield'
	if p.eatKeyword("from") {
		v, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		return &ast.YieldFrom{Value: v}, nil
	}
	if p.atOp(")") || p.atOp("]") || p.atOp("}") || p.atOp(",") || p.atOp(":") ||
		p.at(token.Newline) || p.at(token.EndOfInput) {
		return &ast.Yield{}, nil
	}
	v, err := p.parseTestListStar(false)
	if err != nil {
		return nil, err
	}
	return &ast.Yield{Value: v}, nil
}

// parseParenAtom handles `()`, `(yield ...)`, a parenthesized single
// expression, a generator expression, and a parenthesized tuple (spec
// §4.3 Atoms).
func (p *Parser) parseParenAtom() (ast.Expr, error) {
	p.advance() // '('
	if p.atOp(")") {
		p.advance()
		return &ast.Tuple{}, nil
	}
	if p.atKeyword("yield") {
		y, err := p.parseYieldExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return y, nil
	}

	first, err := p.parseStarOrNamedExpr()
	if err != nil {
		return nil, err
	}

	if p.isComprehensionStart() {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.GeneratorExp{Elt: first, Generators: gens}, nil
	}

	if p.atOp(",") {
		elts := []ast.Expr{first}
		for p.eatOp(",") {
			if p.atOp(")") {
				break
			}
			item, err := p.parseStarOrNamedExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, item)
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.Tuple{Elts: elts}, nil
	}

	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseStarOrNamedExpr() (ast.Expr, error) {
	if p.atOp("*") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Value: v}, nil
	}
	return p.parseNamedExprTest()
}

func (p *Parser) isComprehensionStart() bool {
	if p.atKeyword("for") {
		return true
	}
	return p.atKeyword("async") && p.peekAt(1).Kind == token.Name && p.peekAt(1).Lexeme == "for"
}

func (p *Parser) parseComprehensionClauses() ([]ast.Comprehension, error) {
	var out []ast.Comprehension
	for p.isComprehensionStart() {
		isAsync := 0
		if p.eatKeyword("async") {
			isAsync = 1
		}
		if _, err := p.expectKeyword("for"); err != nil {
			return nil, err
		}
		target, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("in"); err != nil {
			return nil, err
		}
		iter, err := p.parseOrTest()
		if err != nil {
			return nil, err
		}
		var ifs []ast.Expr
		for p.atKeyword("if") {
			p.advance()
			cond, err := p.parseOrTest()
			if err != nil {
				return nil, err
			}
			ifs = append(ifs, cond)
		}
		out = append(out, ast.Comprehension{Target: target, Iter: iter, Ifs: ifs, IsAsync: isAsync})
	}
	return out, nil
}

// parseListAtom handles `[...]` → List or ListComp (spec §4.3 Atoms).
func (p *Parser) parseListAtom() (ast.Expr, error) {
	p.advance() // '['
	if p.atOp("]") {
		p.advance()
		return &ast.List{}, nil
	}
	first, err := p.parseStarOrNamedExpr()
	if err != nil {
		return nil, err
	}
	if p.isComprehensionStart() {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp("]"); err != nil {
			return nil, err
		}
		return &ast.ListComp{Elt: first, Generators: gens}, nil
	}
	elts := []ast.Expr{first}
	for p.eatOp(",") {
		if p.atOp("]") {
			break
		}
		item, err := p.parseStarOrNamedExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, item)
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return &ast.List{Elts: elts}, nil
}

// parseDictOrSetAtom handles `{...}` → Dict, DictComp, Set, or SetComp
// (spec §4.3 Atoms). `**expr` spreads in dicts are keys=nil entries.
func (p *Parser) parseDictOrSetAtom() (ast.Expr, error) {
	p.advance() // '{'
	if p.atOp("}") {
		p.advance()
		return &ast.Dict{}, nil
	}

	if p.atOp("**") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		dict := &ast.Dict{Keys: []ast.Expr{nil}, Values: []ast.Expr{v}}
		for p.eatOp(",") {
			if p.atOp("}") {
				break
			}
			k, v, err := p.parseDictEntry()
			if err != nil {
				return nil, err
			}
			dict.Keys = append(dict.Keys, k)
			dict.Values = append(dict.Values, v)
		}
		if _, err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return dict, nil
	}

	first, err := p.parseStarOrNamedExpr()
	if err != nil {
		return nil, err
	}

	if p.atOp(":") {
		p.advance()
		firstVal, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		if p.isComprehensionStart() {
			gens, err := p.parseComprehensionClauses()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp("}"); err != nil {
				return nil, err
			}
			return &ast.DictComp{Key: first, Value: firstVal, Generators: gens}, nil
		}
		dict := &ast.Dict{Keys: []ast.Expr{first}, Values: []ast.Expr{firstVal}}
		for p.eatOp(",") {
			if p.atOp("}") {
				break
			}
			k, v, err := p.parseDictEntry()
			if err != nil {
				return nil, err
			}
			dict.Keys = append(dict.Keys, k)
			dict.Values = append(dict.Values, v)
		}
		if _, err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return dict, nil
	}

	if p.isComprehensionStart() {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return &ast.SetComp{Elt: first, Generators: gens}, nil
	}

	elts := []ast.Expr{first}
	for p.eatOp(",") {
		if p.atOp("}") {
			break
		}
		item, err := p.parseStarOrNamedExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, item)
	}
	if _, err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return &ast.Set{Elts: elts}, nil
}

func (p *Parser) parseDictEntry() (ast.Expr, ast.Expr, error) {
	if p.atOp("**") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, nil, err
		}
		return nil, v, nil
	}
	k, err := p.parseTest()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, nil, err
	}
	v, err := p.parseTest()
	if err != nil {
		return nil, nil, err
	}
	return k, v, nil
}

// parseCallArgs parses a call's `(args)`, including `*expr`/`**expr`
// spreads, `name=expr` keywords, and a sole bare generator-expression
// argument (spec §4.3 Calls).
func (p *Parser) parseCallArgs() ([]ast.Expr, []ast.Keyword, error) {
	p.advance() // '('
	var args []ast.Expr
	var keywords []ast.Keyword
	for !p.atOp(")") {
		switch {
		case p.atOp("**"):
			p.advance()
			v, err := p.parseTest()
			if err != nil {
				return nil, nil, err
			}
			keywords = append(keywords, ast.Keyword{Value: v})
		case p.atOp("*"):
			p.advance()
			v, err := p.parseTest()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, &ast.Starred{Value: v})
		case p.at(token.Name) && p.peekAt(1).Kind == token.Op && p.peekAt(1).Lexeme == "=":
			name := p.advance()
			p.advance() // '='
			v, err := p.parseTest()
			if err != nil {
				return nil, nil, err
			}
			kw := name.Lexeme
			keywords = append(keywords, ast.Keyword{Arg: &kw, Value: v})
		default:
			v, err := p.parseNamedExprTest()
			if err != nil {
				return nil, nil, err
			}
			if len(args) == 0 && len(keywords) == 0 && p.isComprehensionStart() {
				gens, err := p.parseComprehensionClauses()
				if err != nil {
					return nil, nil, err
				}
				if _, err := p.expectOp(")"); err != nil {
					return nil, nil, err
				}
				return []ast.Expr{&ast.GeneratorExp{Elt: v, Generators: gens}}, nil, nil
			}
			args = append(args, v)
		}
		if !p.eatOp(",") {
			break
		}
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, nil, err
	}
	return args, keywords, nil
}

// parseSubscript parses `[slice]` where slice may be a plain index, a
// `a:b:c` slice, or a comma-separated tuple of either (spec §4.3
// Trailers).
func (p *Parser) parseSubscript() (ast.Expr, error) {
	p.advance() // '['
	first, err := p.parseSliceItem()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		if _, err := p.expectOp("]"); err != nil {
			return nil, err
		}
		return first, nil
	}
	items := []ast.Expr{first}
	for p.eatOp(",") {
		if p.atOp("]") {
			break
		}
		item, err := p.parseSliceItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return &ast.Tuple{Elts: items}, nil
}

func (p *Parser) parseSliceItem() (ast.Expr, error) {
	if p.atOp("*") {
		p.advance()
		v, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Value: v}, nil
	}

	var lower ast.Expr
	var err error
	if !p.atOp(":") {
		lower, err = p.parseNamedExprTest()
		if err != nil {
			return nil, err
		}
	}
	if !p.atOp(":") {
		return lower, nil
	}
	p.advance() // ':'

	var upper, step ast.Expr
	if !p.atOp(":") && !p.atOp(",") && !p.atOp("]") {
		upper, err = p.parseTest()
		if err != nil {
			return nil, err
		}
	}
	if p.eatOp(":") {
		if !p.atOp(",") && !p.atOp("]") {
			step, err = p.parseTest()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.Slice{Lower: lower, Upper: upper, Step: step}, nil
}
