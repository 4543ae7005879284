package walk

import "github.com/aledsdavies/pyx/pkgs/ast"

// VisitFunc handles one node tag. Its return value is caller-defined;
// Visitor does nothing with it beyond handing it back from Visit.
type VisitFunc func(n ast.Node) any

// Visitor dispatches on a node's Type() tag to a registered hook, the
// polymorphic "visit_<TypeName>" idiom of spec §4.4.3. A node with no
// matching hook falls through to GenericVisit, which by default just
// recurses into the node's children and reports no value — set
// GenericVisit to override that fallback.
type Visitor struct {
	Hooks        map[string]VisitFunc
	GenericVisit VisitFunc
}

// NewVisitor returns an empty Visitor ready for On calls.
func NewVisitor() *Visitor {
	return &Visitor{Hooks: map[string]VisitFunc{}}
}

// On registers fn as the hook for tag (e.g. "FunctionDef") and returns
// the receiver so calls can be chained.
func (v *Visitor) On(tag string, fn VisitFunc) *Visitor {
	v.Hooks[tag] = fn
	return v
}

// Visit dispatches n to its registered hook, or to the generic fallback
// when none is registered.
func (v *Visitor) Visit(n ast.Node) any {
	if n == nil {
		return nil
	}
	if fn, ok := v.Hooks[n.Type()]; ok {
		return fn(n)
	}
	if v.GenericVisit != nil {
		return v.GenericVisit(n)
	}
	for _, child := range Children(n) {
		v.Visit(child)
	}
	return nil
}
