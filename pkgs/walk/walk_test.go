package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/pyx/pkgs/ast"
)

func TestWalkPreorderVisitsEveryNodeOnce(t *testing.T) {
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Bin(ast.Id("a"), ast.Add, ast.Int(1))),
		ast.AssignTo(ast.Id("x"), ast.Str("hi")),
	)
	nodes := Walk(mod)

	var types []string
	for _, n := range nodes {
		types = append(types, n.Type())
	}
	assert.Equal(t, []string{"Module", "Expr", "BinOp", "Name", "Constant", "Assign", "Name", "Constant"}, types)
}

func TestWalkCountsMatchNameOccurrences(t *testing.T) {
	// spec §8 invariant: the number of Name nodes walk(parse(src))
	// visits equals the number of Name tokens in the parsed spans.
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Bin(ast.Id("a"), ast.Add, ast.Id("b"))),
		ast.AssignTo(ast.Id("x"), ast.Id("a")),
	)
	names := NodesOfKind(mod, "Name")
	require.Len(t, names, 4)
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = n.(*ast.Name).Id
	}
	assert.Equal(t, []string{"a", "b", "x", "a"}, ids)
}

func TestNodesOfKindMultipleTags(t *testing.T) {
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Bin(ast.Id("a"), ast.Add, ast.Int(1))),
		ast.AssignTo(ast.Id("x"), ast.Str("hi")),
	)
	got := NodesOfKind(mod, "Name", "Constant")
	assert.Len(t, got, 4)
}

func TestFindReturnsFirstMatchInPreorder(t *testing.T) {
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Bin(ast.Id("a"), ast.Add, ast.Int(1))),
		ast.AssignTo(ast.Id("x"), ast.Str("hi")),
	)
	found := Find(mod, func(n ast.Node) bool { return n.Type() == "Name" })
	require.NotNil(t, found)
	assert.Equal(t, "a", found.(*ast.Name).Id)
}

func TestFindAllCollectsEveryMatch(t *testing.T) {
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Bin(ast.Id("a"), ast.Add, ast.Id("b"))),
		ast.AssignTo(ast.Id("x"), ast.Str("hi")),
	)
	found := FindAll(mod, func(n ast.Node) bool {
		name, ok := n.(*ast.Name)
		return ok && name.Id == "a"
	})
	assert.Len(t, found, 1)
}

func TestFindReturnsNilWhenNothingMatches(t *testing.T) {
	mod := ast.Mod(ast.ExprAsStmt(ast.Int(1)))
	assert.Nil(t, Find(mod, func(n ast.Node) bool { return n.Type() == "Lambda" }))
}

func TestChildrenReturnsOnlyImmediateChildren(t *testing.T) {
	bin := ast.Bin(ast.Id("a"), ast.Add, ast.Int(1))
	children := Children(bin)
	require.Len(t, children, 2)
	assert.Equal(t, "Name", children[0].Type())
	assert.Equal(t, "Constant", children[1].Type())
}

func TestVisitorDispatchesToRegisteredHook(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Str("hi")))
	var seen []string
	v := NewVisitor()
	v.On("Name", func(n ast.Node) any {
		seen = append(seen, n.(*ast.Name).Id)
		return nil
	})
	v.Visit(mod)
	assert.Equal(t, []string{"x"}, seen)
}

func TestVisitorGenericVisitFallsBackWhenNoHookRegistered(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Str("hi")))
	var genericCalls []string
	v := NewVisitor()
	v.On("Assign", func(n ast.Node) any {
		for _, c := range Children(n) {
			v.Visit(c)
		}
		return nil
	})
	v.GenericVisit = func(n ast.Node) any {
		genericCalls = append(genericCalls, n.Type())
		for _, c := range Children(n) {
			v.Visit(c)
		}
		return nil
	}
	v.Visit(mod)
	assert.Contains(t, genericCalls, "Module")
	assert.Contains(t, genericCalls, "Name")
	assert.Contains(t, genericCalls, "Constant")
	assert.NotContains(t, genericCalls, "Assign")
}

func TestVisitorDefaultGenericVisitRecursesWithoutHooks(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Str("hi")))
	var seen []string
	v := NewVisitor()
	v.On("Name", func(n ast.Node) any {
		seen = append(seen, n.(*ast.Name).Id)
		return nil
	})
	// No GenericVisit set: falls through to recursing into children,
	// so the Name hook still fires even though nothing handles Module
	// or Assign directly.
	v.Visit(mod)
	assert.Equal(t, []string{"x"}, seen)
}

func TestTransformerReplacesMatchedNodes(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Id("y")))
	tr := NewTransformer()
	tr.On("Name", func(n ast.Node) ast.Node {
		name := n.(*ast.Name)
		if name.Id == "y" {
			return &ast.Name{Id: "z"}
		}
		return name
	})
	out := tr.Transform(mod).(*ast.Module)
	assign := out.Body[0].(*ast.Assign)
	assert.Equal(t, "x", assign.Targets[0].(*ast.Name).Id)
	assert.Equal(t, "z", assign.Value.(*ast.Name).Id)
}

func TestTransformerDoesNotMutateInputTree(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Id("y")))
	tr := NewTransformer()
	tr.On("Name", func(n ast.Node) ast.Node {
		return &ast.Name{Id: "replaced"}
	})
	tr.Transform(mod)

	original := mod.Body[0].(*ast.Assign)
	assert.Equal(t, "x", original.Targets[0].(*ast.Name).Id)
	assert.Equal(t, "y", original.Value.(*ast.Name).Id)
}

func TestTransformerDeletesListElementOnNilReturn(t *testing.T) {
	mod := ast.Mod(
		ast.ExprAsStmt(ast.Int(1)),
		ast.ExprAsStmt(ast.Int(2)),
	)
	tr := NewTransformer()
	tr.On("Expr", func(n ast.Node) ast.Node {
		stmt := n.(*ast.ExprStmt)
		if c, ok := stmt.Value.(*ast.Constant); ok && c.Value == int64(1) {
			return nil
		}
		return stmt
	})
	out := tr.Transform(mod).(*ast.Module)
	require.Len(t, out.Body, 1)
	remaining := out.Body[0].(*ast.ExprStmt).Value.(*ast.Constant)
	assert.Equal(t, int64(2), remaining.Value)
}

func TestTransformerGenericTransformRebuildsUnhookedNodes(t *testing.T) {
	mod := ast.Mod(ast.AssignTo(ast.Id("x"), ast.Id("y")))
	tr := NewTransformer()
	tr.On("Name", func(n ast.Node) ast.Node {
		name := n.(*ast.Name)
		return &ast.Name{Id: name.Id + "_renamed"}
	})
	out := tr.Transform(mod).(*ast.Module)
	assign := out.Body[0].(*ast.Assign)
	assert.Equal(t, "x_renamed", assign.Targets[0].(*ast.Name).Id)
	assert.Equal(t, "y_renamed", assign.Value.(*ast.Name).Id)
}
