package walk

import (
	"reflect"

	"github.com/aledsdavies/pyx/pkgs/ast"
)

// TransformFunc produces a replacement for n: the same node, a fresh
// one, or nil to delete n when it sits in a list-typed field (spec
// §4.4.4). Returning nil for a field that isn't list-typed clears that
// field instead.
type TransformFunc func(n ast.Node) ast.Node

// Transformer rebuilds a tree bottom-up, dispatching on a node's Type()
// tag the same way Visitor does. A node with no registered hook is
// rebuilt by GenericTransform, which by default copies the node and
// recursively transforms every node-valued field in place. The input
// tree is never mutated: every level that changes gets a fresh copy.
type Transformer struct {
	Hooks            map[string]TransformFunc
	GenericTransform TransformFunc
}

// NewTransformer returns an empty Transformer ready for On calls.
func NewTransformer() *Transformer {
	return &Transformer{Hooks: map[string]TransformFunc{}}
}

// On registers fn as the hook for tag and returns the receiver so calls
// can be chained.
func (tr *Transformer) On(tag string, fn TransformFunc) *Transformer {
	tr.Hooks[tag] = fn
	return tr
}

// Transform returns n's replacement, descending into n's children
// first unless a hook for n's own tag is registered (a registered hook
// is responsible for recursing into its own children if it wants to).
func (tr *Transformer) Transform(n ast.Node) ast.Node {
	if n == nil {
		return nil
	}
	if fn, ok := tr.Hooks[n.Type()]; ok {
		return fn(n)
	}
	if tr.GenericTransform != nil {
		return tr.GenericTransform(n)
	}
	return rebuild(n, tr)
}

var nodeType = reflect.TypeOf((*ast.Node)(nil)).Elem()

func isNodeInterfaceType(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.Implements(nodeType)
}

// rebuild copies n (one level) and replaces each node-valued field with
// its transformed counterpart, recursing via tr.Transform so each
// child's own hook (or generic fallback) still applies.
func rebuild(n ast.Node, tr *Transformer) ast.Node {
	orig := reflect.ValueOf(n)
	if orig.Kind() == reflect.Ptr {
		if orig.IsNil() {
			return n
		}
		fresh := reflect.New(orig.Type().Elem())
		fresh.Elem().Set(orig.Elem())
		transformFieldsInPlace(fresh.Elem(), tr)
		return fresh.Interface().(ast.Node)
	}
	fresh := reflect.New(orig.Type())
	fresh.Elem().Set(orig)
	transformFieldsInPlace(fresh.Elem(), tr)
	return fresh.Elem().Interface().(ast.Node)
}

func transformFieldsInPlace(v reflect.Value, tr *Transformer) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "pos" {
			continue
		}
		transformValueInPlace(v.Field(i), tr)
	}
}

func transformValueInPlace(fv reflect.Value, tr *Transformer) {
	switch fv.Kind() {
	case reflect.Interface:
		if fv.IsNil() {
			return
		}
		elem := fv.Elem()
		if n, ok := elem.Interface().(ast.Node); ok {
			replaced := tr.Transform(n)
			if replaced == nil {
				fv.Set(reflect.Zero(fv.Type()))
				return
			}
			fv.Set(reflect.ValueOf(replaced))
		}
	case reflect.Ptr:
		if fv.IsNil() {
			return
		}
		if n, ok := fv.Interface().(ast.Node); ok {
			replaced := tr.Transform(n)
			if replaced == nil {
				fv.Set(reflect.Zero(fv.Type()))
				return
			}
			nv := reflect.ValueOf(replaced)
			if nv.Type() == fv.Type() {
				fv.Set(nv)
			}
			return
		}
		if fv.Elem().Kind() == reflect.Struct {
			transformFieldsInPlace(fv.Elem(), tr)
		}
	case reflect.Slice:
		elemType := fv.Type().Elem()
		if isNodeInterfaceType(elemType) {
			out := reflect.MakeSlice(fv.Type(), 0, fv.Len())
			for i := 0; i < fv.Len(); i++ {
				item := fv.Index(i)
				if item.IsNil() {
					continue
				}
				n := item.Interface().(ast.Node)
				replaced := tr.Transform(n)
				if replaced == nil {
					continue
				}
				out = reflect.Append(out, reflect.ValueOf(replaced))
			}
			fv.Set(out)
			return
		}
		// Concrete struct-element slices (Arguments.Args []Arg,
		// With.Items []WithItem, ...) are copied and transformed in the
		// copy, so the input's backing array is left untouched;
		// list-context deletion only applies to the interface-typed
		// Stmt/Expr/Pattern/TypeParam slices above.
		if fv.Len() == 0 || elemType.Kind() != reflect.Struct {
			return
		}
		cp := reflect.MakeSlice(fv.Type(), fv.Len(), fv.Len())
		reflect.Copy(cp, fv)
		for i := 0; i < cp.Len(); i++ {
			transformFieldsInPlace(cp.Index(i), tr)
		}
		fv.Set(cp)
	case reflect.Struct:
		transformFieldsInPlace(fv, tr)
	}
}
