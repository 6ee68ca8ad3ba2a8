package optimizer

import "srcc/internal/parser"

// eliminateDeadAssigns drops a scalar, non-indexed assignment when its
// target is not read again in the same straight-line block before a later
// whole-value assignment to the same name overwrites it (spec.md
// §4.G: "local-only reaching-definitions, no inter-procedural analysis").
// An assignment whose value expression contains a Call is always kept:
// deleting it would also delete the call's side effect.
func eliminateDeadAssigns(stmts []parser.Stmt) []parser.Stmt {
	out := make([]parser.Stmt, 0, len(stmts))
	for i, st := range stmts {
		if a, ok := st.(*parser.Assign); ok && a.Target.Index == nil && !exprHasCall(a.Value) {
			if !stmtsUseName(stmts[i+1:], a.Target.Name) {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

func exprHasCall(e parser.Expr) bool {
	switch e := e.(type) {
	case *parser.Call:
		return true
	case *parser.Binary:
		return exprHasCall(e.Lhs) || exprHasCall(e.Rhs)
	case *parser.Unary:
		return exprHasCall(e.Operand)
	case *parser.Index:
		return exprHasCall(e.Index)
	case *parser.ImplicitCast:
		return exprHasCall(e.Inner)
	default:
		return false
	}
}

func exprUsesName(e parser.Expr, name string) bool {
	switch e := e.(type) {
	case *parser.Ref:
		return e.Name == name
	case *parser.Index:
		return e.Name == name || exprUsesName(e.Index, name)
	case *parser.Binary:
		return exprUsesName(e.Lhs, name) || exprUsesName(e.Rhs, name)
	case *parser.Unary:
		return exprUsesName(e.Operand, name)
	case *parser.ImplicitCast:
		return exprUsesName(e.Inner, name)
	case *parser.Call:
		for _, arg := range e.Args {
			if exprUsesName(arg, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func stmtsUseName(stmts []parser.Stmt, name string) bool {
	for _, st := range stmts {
		switch s := st.(type) {
		case *parser.Assign:
			if s.Target.Index != nil && exprUsesName(s.Target.Index, name) {
				return true
			}
			if s.Target.Name == name && s.Target.Index != nil {
				// a[i] := ... reads a's base address but not its value; the
				// value expression is what matters for a straight read.
			}
			if exprUsesName(s.Value, name) {
				return true
			}
			if s.Target.Name == name && s.Target.Index == nil {
				// A whole-value overwrite kills the earlier definition: no
				// later read in this list can see it.
				return false
			}
		case *parser.If:
			if exprUsesName(s.Cond, name) {
				return true
			}
			if stmtsUseName(s.Then, name) || stmtsUseName(s.Else, name) {
				return true
			}
		case *parser.For:
			if exprUsesName(s.Init.Value, name) || exprUsesName(s.Cond, name) {
				return true
			}
			if stmtsUseName(s.Body, name) {
				return true
			}
		case *parser.CallStmt:
			if exprUsesName(s.Call, name) {
				return true
			}
		}
	}
	return false
}
