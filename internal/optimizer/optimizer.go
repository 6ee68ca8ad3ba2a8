// Package optimizer implements component G: three levels (0 identity, 1
// constant folding and dead-branch elimination, 2 additionally algebraic
// identities and dead-assignment elimination), spec.md §4.G. Statement
// traversal uses a plain type switch that rebuilds the statement list,
// which recurses into If/For bodies the same way. Expression folding is a
// parser.ExprVisitor, since
// Expr.Accept already returns a (possibly replaced) node — the same shape
// the type checker uses to splice in ImplicitCast nodes.
package optimizer

import "srcc/internal/parser"

type Optimizer struct {
	level int
}

// Optimize rewrites prog in place at the given level and returns it. The
// optimiser never changes the set or order of observable side effects
// (spec.md invariant 4): every Call expression survives, whatever
// statement it appears in.
func Optimize(prog *parser.Program, level int) *parser.Program {
	o := &Optimizer{level: level}
	if level == 0 {
		return prog
	}
	for _, d := range prog.Decls {
		if proc, ok := d.(*parser.ProcedureDecl); ok {
			proc.Body = o.optimizeStmts(proc.Body)
		}
	}
	prog.Body = o.optimizeStmts(prog.Body)
	return prog
}

func (o *Optimizer) optimizeExpr(e parser.Expr) parser.Expr {
	return e.Accept(o)
}

func (o *Optimizer) optimizeStmts(stmts []parser.Stmt) []parser.Stmt {
	var out []parser.Stmt
	for _, st := range stmts {
		switch s := st.(type) {
		case *parser.Assign:
			s.Value = o.optimizeExpr(s.Value)
			if s.Target.Index != nil {
				s.Target.Index = o.optimizeExpr(s.Target.Index)
			}
			out = append(out, s)

		case *parser.If:
			s.Cond = o.optimizeExpr(s.Cond)
			s.Then = o.optimizeStmts(s.Then)
			s.Else = o.optimizeStmts(s.Else)
			if branch, taken := o.constantBranch(s); taken {
				out = append(out, branch...)
				continue
			}
			out = append(out, s)

		case *parser.For:
			s.Init.Value = o.optimizeExpr(s.Init.Value)
			if s.Init.Target.Index != nil {
				s.Init.Target.Index = o.optimizeExpr(s.Init.Target.Index)
			}
			s.Cond = o.optimizeExpr(s.Cond)
			s.Body = o.optimizeStmts(s.Body)
			out = append(out, s)

		case *parser.CallStmt:
			s.Call = o.optimizeExpr(s.Call).(*parser.Call)
			out = append(out, s)

		default:
			out = append(out, st)
		}
	}

	if o.level >= 2 {
		out = eliminateDeadAssigns(out)
	}
	return out
}

// constantBranch implements level-1 dead-branch elimination: an If whose
// condition folded to a literal bool is replaced by the taken arm.
func (o *Optimizer) constantBranch(s *parser.If) ([]parser.Stmt, bool) {
	if o.level < 1 {
		return nil, false
	}
	lit, ok := s.Cond.(*parser.Lit)
	if !ok {
		return nil, false
	}
	b, ok := lit.Value.(bool)
	if !ok {
		return nil, false
	}
	if b {
		return s.Then, true
	}
	return s.Else, true
}
