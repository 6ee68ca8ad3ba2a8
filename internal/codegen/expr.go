package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"srcc/internal/parser"
	"srcc/internal/symtab"
)

// emitExpr renders e as a C expression. A Call nested inside a larger
// expression is hoisted into a temporary declared via g.pending, which the
// caller must flush (as a statement, ahead of the line using the returned
// text) before using it.
func (g *Generator) emitExpr(e parser.Expr) string {
	switch n := e.(type) {
	case *parser.Lit:
		return litText(n)
	case *parser.Ref:
		return n.Name
	case *parser.Index:
		return fmt.Sprintf("%s[%s]", n.Name, g.emitExpr(n.Index))
	case *parser.Unary:
		return g.emitUnary(n)
	case *parser.Binary:
		return g.emitBinary(n)
	case *parser.ImplicitCast:
		return g.emitCast(n)
	case *parser.Call:
		return g.emitCallAsValue(n)
	default:
		return fmt.Sprintf("/* unsupported expr %T */ 0", e)
	}
}

func litText(l *parser.Lit) string {
	switch v := l.Value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64) + "f"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return strconv.Quote(v)
	default:
		return "0"
	}
}

func (g *Generator) emitUnary(u *parser.Unary) string {
	operand := g.emitExpr(u.Operand)
	switch u.Op {
	case "-":
		return fmt.Sprintf("(-(%s))", operand)
	case "not":
		if u.Operand.Type().Kind == parser.KindBool {
			return fmt.Sprintf("(!(%s))", operand)
		}
		return fmt.Sprintf("(~(%s))", operand)
	default:
		return fmt.Sprintf("/* unsupported unary %q */ 0", u.Op)
	}
}

// cBinaryOp maps a SRC binary operator to its direct C spelling; every
// operator in spec.md §4.F already matches C syntax, including boolean
// &/| (valid bitwise and/or on the 0/1 encoding).
func cBinaryOp(op string) string { return op }

func (g *Generator) emitBinary(b *parser.Binary) string {
	if b.Broadcast != nil {
		// Only reachable when a broadcast expression shows up somewhere
		// other than the direct value of a whole-array assignment; SRC's
		// grammar gives arrays no other way to appear, so this is never hit
		// in practice (see VisitAssign for the supported shape).
		return "/* unsupported nested broadcast */ 0"
	}

	lhs := g.emitExpr(b.Lhs)
	rhs := g.emitExpr(b.Rhs)

	if (b.Op == "&" || b.Op == "|") && b.Lhs.Type().Kind == parser.KindBool {
		opChar := "'&'"
		if b.Op == "|" {
			opChar = "'|'"
		}
		// validateBooleanOp is void: it only enforces the 0/1 contract before
		// the operation runs (spec.md §4.H), so it is emitted as its own
		// statement ahead of the line that uses the actual result, which is
		// still the plain C &/| (valid on the 0/1 encoding as logical and/or).
		g.pending = append(g.pending, fmt.Sprintf("validateBooleanOp(%s, %s, %s, %d);", lhs, opChar, rhs, b.Pos()))
	}

	return fmt.Sprintf("(%s %s %s)", lhs, b.Op, rhs)
}

// emitCast lowers an ImplicitCast to its C spelling. int<->bool needs an
// explicit comparison since SRC treats any nonzero int as true; every
// other coercion is a plain C cast.
func (g *Generator) emitCast(ic *parser.ImplicitCast) string {
	inner := g.emitExpr(ic.Inner)
	switch {
	case ic.From.Kind == parser.KindInt && ic.To.Kind == parser.KindBool:
		return fmt.Sprintf("((%s) != 0)", inner)
	case ic.From.Kind == parser.KindBool && ic.To.Kind == parser.KindInt:
		return fmt.Sprintf("(%s)", inner)
	case ic.From.Kind == parser.KindInt && ic.To.Kind == parser.KindFloat:
		return fmt.Sprintf("((float)(%s))", inner)
	case ic.From.Kind == parser.KindFloat && ic.To.Kind == parser.KindInt:
		return fmt.Sprintf("((int)(%s))", inner)
	default:
		return inner
	}
}

// emitCallText renders a call meant to be used as a statement in its own
// right (the CallStmt case): no temporary is needed since nothing consumes
// its value.
func (g *Generator) emitCallText(call *parser.Call) string {
	args := g.emitArgs(call)
	return fmt.Sprintf("%s(%s)", call.Callee, strings.Join(args, ", "))
}

// emitCallAsValue renders a call used inside an expression. A builtin
// genuinely returns a value at the C level: its call is hoisted into
// g.pending as the initializer of a fresh temporary, and the temporary's
// name is the expression text. A user procedure is always void in the generated C (see emitProcedure): its
// call is hoisted into g.pending as a bare statement, and the expression
// text substituted at the use site is the zero value of its declared
// return type, since SRC's `return;` never carries a value to produce a
// real one. This only matters for the degenerate case of a user procedure
// called for its "value"; see DESIGN.md.
func (g *Generator) emitCallAsValue(call *parser.Call) string {
	if isGetStringCall(call) {
		// getString's frozen ABI is `int getString(char *buf)`: it writes
		// into a caller-supplied buffer rather than returning one (runtime.h),
		// so a fresh buffer is declared and passed by name, not used as a
		// call argument in C's return-value position.
		t := g.newTemp()
		g.pending = append(g.pending, fmt.Sprintf("char %s[%d];", t, stringBufSize))
		g.pending = append(g.pending, fmt.Sprintf("getString(%s);", t))
		return t
	}

	if isBuiltinCall(call) {
		args := g.emitArgs(call)
		text := fmt.Sprintf("%s(%s)", call.Callee, strings.Join(args, ", "))
		t := g.newTemp()
		g.pending = append(g.pending, fmt.Sprintf("%s %s = %s;", cType(call.Type()), t, text))
		return t
	}

	args := g.emitArgs(call)
	g.pending = append(g.pending, fmt.Sprintf("%s(%s);", call.Callee, strings.Join(args, ", ")))
	return zeroValue(call.Type())
}

// isGetStringCall reports whether call invokes the getString builtin, the
// one builtin whose C signature takes an out-parameter buffer instead of
// returning a value, and so needs its own lowering wherever a call appears
// (expression position, a direct assignment target, or a bare statement).
func isGetStringCall(call *parser.Call) bool {
	return isBuiltinCall(call) && call.Callee == "getString"
}

func (g *Generator) emitArgs(call *parser.Call) []string {
	sym, _ := call.Decl.(*symtab.Symbol)
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		text := g.emitExpr(a)
		if sym != nil && i < len(sym.Dirs) && sym.Dirs[i] == parser.DirOut {
			if ref, ok := a.(*parser.Ref); ok {
				if ref.Type().Kind == parser.KindArray {
					// Arrays already decay to a pointer in C; procSignature
					// emits the out param's array parameter as "T name[]"
					// (a T*), so passing "&name" here would produce a
					// T(*)[N] that doesn't match.
					text = ref.Name
				} else {
					text = "&" + ref.Name
				}
			} else if idx, ok := a.(*parser.Index); ok {
				text = fmt.Sprintf("&%s[%s]", idx.Name, g.emitExpr(idx.Index))
			}
		}
		args[i] = text
	}
	return args
}
