package codegen

import (
	"fmt"

	"srcc/internal/parser"
)

func (g *Generator) emitStmt(s parser.Stmt) {
	if g.opts.Verbose {
		g.writeln("// line %d", s.Pos())
	}
	s.Accept(g)
}

func (g *Generator) emitStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		g.emitStmt(s)
	}
}

// VisitAssign lowers `target := value`. A whole-array target whose value
// is a broadcast Binary lowers to a for loop (spec.md §4.F "Array
// broadcasting"); everything else lowers to a single C assignment.
func (g *Generator) VisitAssign(a *parser.Assign) {
	if a.Target.Index == nil {
		if b, ok := a.Value.(*parser.Binary); ok && b.Broadcast != nil {
			g.emitBroadcastAssign(a.Target.Name, b)
			return
		}
	}

	if call, ok := a.Value.(*parser.Call); ok && isGetStringCall(call) {
		g.emitGetStringAssign(a.Target)
		return
	}

	value := g.emitExpr(a.Value)
	g.flushPending()
	if a.Target.Index != nil {
		idx := g.emitExpr(a.Target.Index)
		g.flushPending()
		g.writeln("%s[%s] = %s;", a.Target.Name, idx, value)
		return
	}
	g.writeln("%s = %s;", a.Target.Name, value)
}

// emitGetStringAssign lowers `target := getString();` straight to
// `getString(target);`, the same out-parameter treatment emitArgs already
// gives `out` call arguments: the target itself is the buffer getString
// writes into, so no temporary and no intermediate value are needed.
func (g *Generator) emitGetStringAssign(target parser.Dest) {
	if target.Index != nil {
		idx := g.emitExpr(target.Index)
		g.flushPending()
		g.writeln("getString(%s[%s]);", target.Name, idx)
		return
	}
	g.writeln("getString(%s);", target.Name)
}

// emitBroadcastAssign lowers `a := a op b` (array-array or array-scalar)
// to an index loop over the declared length, since C has no array-valued
// expressions.
func (g *Generator) emitBroadcastAssign(target string, b *parser.Binary) {
	i := g.newTemp()
	g.writeln("for (int %s = 0; %s < %d; %s++) {", i, i, b.Broadcast.Length, i)
	g.indent++

	left := elementText(b.Lhs, i)
	right := elementText(b.Rhs, i)
	op := cBinaryOp(b.Op)
	g.writeln("%s[%s] = %s %s %s;", target, i, left, op, right)

	g.indent--
	g.writeln("}")
}

// elementText renders one operand of a broadcast as the text used inside
// the generated loop: an array operand is indexed by the loop variable, a
// scalar operand is repeated unchanged.
func elementText(e parser.Expr, loopVar string) string {
	if e.Type().Kind == parser.KindArray {
		if ref, ok := e.(*parser.Ref); ok {
			return fmt.Sprintf("%s[%s]", ref.Name, loopVar)
		}
	}
	return exprTextNoCalls(e)
}

// exprTextNoCalls renders a scalar or array leaf expression used inside a
// broadcast loop. Broadcasts only ever appear over bare references in
// practice (the language has no array literals), so this only needs to
// cover Ref and Lit.
func exprTextNoCalls(e parser.Expr) string {
	switch n := e.(type) {
	case *parser.Ref:
		return n.Name
	case *parser.Lit:
		return litText(n)
	default:
		return fmt.Sprintf("/* unsupported broadcast operand %T */ 0", e)
	}
}

func (g *Generator) VisitIf(s *parser.If) {
	cond := g.emitExpr(s.Cond)
	g.flushPending()
	g.writeln("if (%s) {", cond)
	g.indent++
	g.emitStmts(s.Then)
	g.indent--
	if len(s.Else) > 0 {
		g.writeln("} else {")
		g.indent++
		g.emitStmts(s.Else)
		g.indent--
	}
	g.writeln("}")
}

// VisitFor lowers `for (init; cond) body end for`. SRC has no update
// clause — any increment lives in the body as an ordinary assignment — so
// the C for loop's update slot is always left empty; C itself re-evaluates
// the condition text before every iteration, which is all spec.md §4.D
// requires as long as cond has no side effect (a plain comparison, the
// only shape SRC's grammar produces for loop conditions in practice).
func (g *Generator) VisitFor(s *parser.For) {
	g.VisitAssign(s.Init)
	cond := g.emitExpr(s.Cond)
	g.flushPending()
	g.writeln("for (; %s; ) {", cond)
	g.indent++
	g.emitStmts(s.Body)
	g.indent--
	g.writeln("}")
}

// VisitReturn lowers `return;`. The program body's main() must return an
// int, so a return reached there emits "return 0;"; inside a procedure
// (always void at the C level, see emitProcedure) it emits a bare "return;"
// (spec.md §4.H).
func (g *Generator) VisitReturn(*parser.Return) {
	if g.inMain {
		g.writeln("return 0;")
		return
	}
	g.writeln("return;")
}

func (g *Generator) VisitCallStmt(s *parser.CallStmt) {
	if isGetStringCall(s.Call) {
		// getString(); with its result discarded still needs a buffer to
		// write into at the C level; the buffer is never read back.
		t := g.newTemp()
		g.writeln("char %s[%d];", t, stringBufSize)
		g.writeln("getString(%s);", t)
		return
	}
	call := g.emitCallText(s.Call)
	g.flushPending()
	g.writeln("%s;", call)
}
