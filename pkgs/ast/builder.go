package ast

// Builder constructors, in the teacher's terse constructor-function
// idiom (pkgs/ast/builder.go's Var/Cmd/Shell/Id/Str/Num), adapted to
// the Python node set. Used by tests and by callers assembling trees
// without going through the parser.

func Mod(body ...Stmt) *Module {
	return &Module{Body: body}
}

func Id(name string) *Name {
	return &Name{Id: name}
}

func Str(value string) *Constant {
	return &Constant{Value: value}
}

func BytesLit(value string) *Constant {
	return &Constant{Value: Bytes{Value: value}}
}

func Int(value int64) *Constant {
	return &Constant{Value: value}
}

func Float(value float64) *Constant {
	return &Constant{Value: value}
}

func Bool(value bool) *Constant {
	return &Constant{Value: value}
}

func NoneConst() *Constant {
	return &Constant{Value: nil}
}

func Bin(left Expr, op Operator, right Expr) *BinOp {
	return &BinOp{Left: left, Op: op, Right: right}
}

func Cmp(left Expr, op CompareOp, right Expr) *Compare {
	return &Compare{Left: left, Ops: []CompareOp{op}, Comparators: []Expr{right}}
}

func ExprAsStmt(value Expr) *ExprStmt {
	return &ExprStmt{Value: value}
}

func AssignTo(target Expr, value Expr) *Assign {
	return &Assign{Targets: []Expr{target}, Value: value}
}

func CallOf(fn Expr, args ...Expr) *Call {
	return &Call{Func: fn, Args: args}
}
