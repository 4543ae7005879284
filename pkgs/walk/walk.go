// Package walk implements the traversal framework of spec §4.4: a
// generator walk, typed node queries built on it, and a polymorphic
// Visitor/Transformer pair. All four traverse the closed ast.Node set
// by reflecting over exported struct fields, so every field that is
// itself a node or a sequence of nodes is descended into, and scalar
// fields are naturally skipped (they carry no further Node values).
package walk

import (
	"reflect"

	"github.com/aledsdavies/pyx/pkgs/ast"
)

// Walk returns every node reachable from root exactly once, in
// depth-first preorder (spec §4.4.1, §8). Implementations without
// lazy sequences materialize to a list, per the teacher's own
// instinct of returning concrete slices rather than channels or
// iterators for a single bounded tree.
func Walk(root ast.Node) []ast.Node {
	var out []ast.Node
	visit(reflect.ValueOf(root), &out)
	return out
}

func visit(v reflect.Value, out *[]ast.Node) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		visit(v.Elem(), out)
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		if n, ok := v.Interface().(ast.Node); ok {
			*out = append(*out, n)
		}
		visitFields(v.Elem(), out)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			visit(v.Index(i), out)
		}
	case reflect.Struct:
		addr := reflect.New(v.Type())
		addr.Elem().Set(v)
		if n, ok := addr.Interface().(ast.Node); ok {
			*out = append(*out, n)
		}
		visitFields(v, out)
	}
}

func visitFields(v reflect.Value, out *[]ast.Node) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "pos" {
			continue
		}
		visit(v.Field(i), out)
	}
}

// NodesOfKind returns every node in root's tree whose Type() is kind,
// or one of kinds if more than one is given.
func NodesOfKind(root ast.Node, kinds ...string) []ast.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []ast.Node
	for _, n := range Walk(root) {
		if want[n.Type()] {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the first node in root's tree satisfying pred, walked
// in preorder, or nil if none does.
func Find(root ast.Node, pred func(ast.Node) bool) ast.Node {
	for _, n := range Walk(root) {
		if pred(n) {
			return n
		}
	}
	return nil
}

// FindAll returns every node in root's tree satisfying pred.
func FindAll(root ast.Node, pred func(ast.Node) bool) []ast.Node {
	var out []ast.Node
	for _, n := range Walk(root) {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}
