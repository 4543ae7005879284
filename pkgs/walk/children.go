package walk

import (
	"reflect"

	"github.com/aledsdavies/pyx/pkgs/ast"
)

// Children returns n's immediate node-valued fields, without
// descending further — the building block generic_visit/generic
// transform use to recurse one level at a time (spec §4.4).
func Children(n ast.Node) []ast.Node {
	if n == nil {
		return nil
	}
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	var out []ast.Node
	collectChildren(v, &out)
	return out
}

func collectChildren(v reflect.Value, out *[]ast.Node) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "pos" {
			continue
		}
		collectFromValue(v.Field(i), out)
	}
}

func collectFromValue(v reflect.Value, out *[]ast.Node) {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		collectFromValue(v.Elem(), out)
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		if n, ok := v.Interface().(ast.Node); ok {
			*out = append(*out, n)
			return
		}
		collectChildren(v.Elem(), out)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			collectFromValue(v.Index(i), out)
		}
	case reflect.Struct:
		addr := reflect.New(v.Type())
		addr.Elem().Set(v)
		if n, ok := addr.Interface().(ast.Node); ok {
			*out = append(*out, n)
			return
		}
		collectChildren(v, out)
	}
}
