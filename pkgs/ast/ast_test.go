package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ignorePositions strips the position metadata every node embeds, the
// way spec §3 says tests must: "Positions are optional metadata...
// ignored by equality checks in tests." The embedded pos field is
// unexported (its type name starts lowercase) on every concrete node,
// so this is a path filter keyed on the field name rather than a
// per-type cmpopts.IgnoreFields list.
var ignorePositions = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && sf.Name() == "pos"
}, cmp.Ignore())

func TestBuilderConstructorsRoundTripThroughCmp(t *testing.T) {
	got := Mod(
		ExprAsStmt(Bin(Id("a"), Add, Int(1))),
		AssignTo(Id("x"), Str("hi")),
	)
	want := &Module{Body: []Stmt{
		&ExprStmt{Value: &BinOp{Left: &Name{Id: "a"}, Op: Add, Right: &Constant{Value: int64(1)}}},
		&Assign{Targets: []Expr{&Name{Id: "x"}}, Value: &Constant{Value: "hi"}},
	}}
	if diff := cmp.Diff(want, got, ignorePositions); diff != "" {
		t.Errorf("Mod() mismatch (-want +got):\n%s", diff)
	}
}

func TestOperatorStringers(t *testing.T) {
	assert.Equal(t, "Add", Add.String())
	assert.Equal(t, "FloorDiv", FloorDiv.String())
	assert.Equal(t, "Not", Not.String())
	assert.Equal(t, "Lt", Lt.String())
}

func TestNodeToJSONShapeForCompare(t *testing.T) {
	// spec §8 scenario 1: a < b <= c
	cmpNode := &Compare{
		Left:        &Name{Id: "a"},
		Ops:         []CompareOp{Lt, LtE},
		Comparators: []Expr{&Name{Id: "b"}, &Name{Id: "c"}},
	}
	m, err := NodeToJSON(cmpNode)
	require.NoError(t, err)
	assert.Equal(t, "Compare", m["type"])
	assert.Equal(t, []any{"Lt", "LtE"}, m["ops"])
	left, ok := m["left"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Name", left["type"])
	assert.Equal(t, "a", left["id"])
}

func TestNodeToJSONNullAndFieldNaming(t *testing.T) {
	imp := &ImportFrom{Module: nil, Names: []Alias{{Name: "item"}}, Level: 1}
	m, err := NodeToJSON(imp)
	require.NoError(t, err)
	assert.Equal(t, "ImportFrom", m["type"])
	assert.Nil(t, m["module"])
	assert.Equal(t, int64(1), m["level"])
}

func TestNodeToJSONFieldRenaming(t *testing.T) {
	alias := Alias{Name: "x", AsName: nil}
	m, err := NodeToJSON(alias)
	require.NoError(t, err)
	assert.Equal(t, "alias", m["type"])
	assert.Contains(t, m, "asname")
	assert.NotContains(t, m, "AsName")
}

func TestConstantValueKinds(t *testing.T) {
	assert.Equal(t, nil, NoneConst().Value)
	assert.Equal(t, true, Bool(true).Value)
	assert.Equal(t, int64(3), Int(3).Value)
	assert.Equal(t, 3.5, Float(3.5).Value)
	assert.Equal(t, Bytes{Value: "ab"}, BytesLit("ab").Value)
}
