package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/pyx/pkgs/ast"
)

// ignorePositions mirrors pkgs/ast's test filter: the embedded pos
// field is unexported on every concrete node (spec §3: positions are
// ignored by equality checks in tests).
var ignorePositions = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && sf.Name() == "pos"
}, cmp.Ignore())

func diff(t *testing.T, want, got any) {
	t.Helper()
	if d := cmp.Diff(want, got, ignorePositions); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestParseModuleEmptyInput(t *testing.T) {
	mod, err := ParseModule("")
	require.NoError(t, err)
	assert.Empty(t, mod.Body)
}

func TestParseExpressionChainedComparison(t *testing.T) {
	// spec §8 scenario 1.
	expr, err := ParseExpression("a < b <= c")
	require.NoError(t, err)
	diff(t, &ast.Compare{
		Left:        &ast.Name{Id: "a"},
		Ops:         []ast.CompareOp{ast.Lt, ast.LtE},
		Comparators: []ast.Expr{&ast.Name{Id: "b"}, &ast.Name{Id: "c"}},
	}, expr)
}

func TestParseModuleRelativeImport(t *testing.T) {
	// spec §8 scenario 2.
	mod, err := ParseModule("from ...pkg.sub import item\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)
	mod3 := "pkg.sub"
	diff(t, &ast.ImportFrom{
		Module: &mod3,
		Names:  []ast.Alias{{Name: "item"}},
		Level:  3,
	}, mod.Body[0])
}

func TestParseModuleRelativeImportNoModuleName(t *testing.T) {
	mod, err := ParseModule("from . import x\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)
	imp, ok := mod.Body[0].(*ast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, 1, imp.Level)
	assert.Nil(t, imp.Module)
	assert.Equal(t, "x", imp.Names[0].Name)
}

func TestParseExpressionFStringWithFormatSpec(t *testing.T) {
	// spec §8 scenario 3.
	expr, err := ParseExpression(`f"{value:.2f}"`)
	require.NoError(t, err)
	diff(t, &ast.JoinedStr{Values: []ast.Expr{
		&ast.FormattedValue{
			Value:      &ast.Name{Id: "value"},
			Conversion: -1,
			FormatSpec: &ast.JoinedStr{Values: []ast.Expr{&ast.Constant{Value: ".2f"}}},
		},
	}}, expr)
}

func TestParseExpressionWalrusInComprehension(t *testing.T) {
	// spec §8 scenario 6.
	expr, err := ParseExpression("[(y := x*2) for x in items if y > 0]")
	require.NoError(t, err)
	lc, ok := expr.(*ast.ListComp)
	require.True(t, ok)
	ne, ok := lc.Elt.(*ast.NamedExpr)
	require.True(t, ok)
	assert.Equal(t, "y", ne.Target.(*ast.Name).Id)
	bin, ok := ne.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Mult, bin.Op)

	require.Len(t, lc.Generators, 1)
	gen := lc.Generators[0]
	assert.Equal(t, 0, gen.IsAsync)
	require.Len(t, gen.Ifs, 1)
	cmpExpr, ok := gen.Ifs[0].(*ast.Compare)
	require.True(t, ok)
	assert.Equal(t, []ast.CompareOp{ast.Gt}, cmpExpr.Ops)
}

func TestParseModuleCommentOnlyLinesPreserveLineNumbers(t *testing.T) {
	mod, err := ParseModule("# a comment\n# another\nx = 1\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, 3, assign.Position().Line)
}

func TestParseModuleTripleQuotedStringIsOneConstant(t *testing.T) {
	mod, err := ParseModule("x = \"\"\"line one\nline two\"\"\"\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)
	assign, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)
	c, ok := assign.Value.(*ast.Constant)
	require.True(t, ok)
	s, ok := c.Value.(string)
	require.True(t, ok)
	assert.Contains(t, s, "line one")
	assert.Contains(t, s, "line two")
}

func TestParseModuleDictSpreadKeyIsNull(t *testing.T) {
	mod, err := ParseModule("x = {**a, 'b': 1}\n")
	require.NoError(t, err)
	assign := mod.Body[0].(*ast.Assign)
	d, ok := assign.Value.(*ast.Dict)
	require.True(t, ok)
	require.Len(t, d.Keys, 2)
	assert.Nil(t, d.Keys[0])
	require.NotNil(t, d.Values[0])
}

func TestParseModuleFunctionDefaultsAndKwOnly(t *testing.T) {
	mod, err := ParseModule("def f(a, b=1, *, c, d=2, **kw):\n    pass\n")
	require.NoError(t, err)
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	require.Len(t, fn.Args.Args, 2)
	require.Len(t, fn.Args.Defaults, 1)
	require.Len(t, fn.Args.KwOnlyArgs, 2)
	require.Len(t, fn.Args.KwDefaults, 2)
	assert.Nil(t, fn.Args.KwDefaults[0])
	require.NotNil(t, fn.Args.KwDefaults[1])
	require.NotNil(t, fn.Args.Kwarg)
	assert.Equal(t, "kw", fn.Args.Kwarg.Arg)
}

func TestParseModuleUnexpectedTokenFails(t *testing.T) {
	_, err := ParseModule("def f(:\n    pass\n")
	require.Error(t, err)
}
