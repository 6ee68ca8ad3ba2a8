package typecheck

import (
	"srcc/internal/parser"
	"srcc/internal/symtab"
)

// --- ExprVisitor ---

func (c *Checker) VisitBinary(b *parser.Binary) parser.Expr {
	lhs := c.checkExpr(b.Lhs)
	rhs := c.checkExpr(b.Rhs)

	if lhs.Type().Kind == parser.KindArray || rhs.Type().Kind == parser.KindArray {
		return c.checkBroadcast(b, lhs, rhs)
	}

	newLhs, newRhs, result := c.checkScalarBinary(b.Op, lhs, rhs, b.Pos())
	b.Lhs, b.Rhs = newLhs, newRhs
	b.SetType(result)
	return b
}

// checkScalarBinary implements the operator table in spec.md §4.F for two
// non-array operands.
func (c *Checker) checkScalarBinary(op string, lhs, rhs parser.Expr, line int) (parser.Expr, parser.Expr, *parser.Type) {
	lt, rt := lhs.Type(), rhs.Type()

	switch op {
	case "+", "-", "*", "/":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			c.errorf(line, "operator %q requires numeric operands, got %s and %s", op, lt, rt)
		}
		nl, nr, wide := widenNumeric(lhs, rhs)
		return nl, nr, wide

	case "==", "!=":
		switch {
		case lt.IsNumeric() && rt.IsNumeric():
			nl, nr, _ := widenNumeric(lhs, rhs)
			return nl, nr, parser.Bool
		case lt.Kind == parser.KindBool && rt.Kind == parser.KindBool:
			return lhs, rhs, parser.Bool
		case lt.Kind == parser.KindString && rt.Kind == parser.KindString:
			return lhs, rhs, parser.Bool
		default:
			c.errorf(line, "operator %q cannot compare %s and %s", op, lt, rt)
		}

	case "<", ">", "<=", ">=":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			c.errorf(line, "operator %q requires numeric operands, got %s and %s", op, lt, rt)
		}
		nl, nr, _ := widenNumeric(lhs, rhs)
		return nl, nr, parser.Bool

	case "&", "|":
		switch {
		case lt.Kind == parser.KindInt && rt.Kind == parser.KindInt:
			return lhs, rhs, parser.Int
		case lt.Kind == parser.KindBool && rt.Kind == parser.KindBool:
			return lhs, rhs, parser.Bool
		default:
			c.errorf(line, "operator %q requires int×int or bool×bool, got %s and %s", op, lt, rt)
		}
	}

	c.errorf(line, "unsupported operator %q", op)
	return lhs, rhs, nil
}

// widenNumeric promotes an int operand to float when the other is float;
// leaves both as-is when they already agree.
func widenNumeric(lhs, rhs parser.Expr) (parser.Expr, parser.Expr, *parser.Type) {
	lt, rt := lhs.Type(), rhs.Type()
	if lt.Kind == parser.KindFloat || rt.Kind == parser.KindFloat {
		if lt.Kind == parser.KindInt {
			lhs = parser.NewImplicitCast(lhs, parser.Int, parser.Float)
		}
		if rt.Kind == parser.KindInt {
			rhs = parser.NewImplicitCast(rhs, parser.Int, parser.Float)
		}
		return lhs, rhs, parser.Float
	}
	return lhs, rhs, parser.Int
}

// checkBroadcast handles a binary operator where at least one side is an
// array: scalar-vs-array broadcasts the scalar, array-vs-array requires
// equal length (spec.md §4.F "Array broadcasting").
func (c *Checker) checkBroadcast(b *parser.Binary, lhs, rhs parser.Expr) parser.Expr {
	lt, rt := lhs.Type(), rhs.Type()

	var length int
	var scalarLeft bool
	var lElem, rElem parser.Expr

	switch {
	case lt.Kind == parser.KindArray && rt.Kind == parser.KindArray:
		if lt.Length != rt.Length {
			c.errorf(b.Pos(), "array length mismatch in binary operator: %d vs %d", lt.Length, rt.Length)
		}
		length = lt.Length
		lElem, rElem = fakeElem(lt.Elem, b.Pos()), fakeElem(rt.Elem, b.Pos())
	case lt.Kind == parser.KindArray:
		length = lt.Length
		scalarLeft = false
		lElem, rElem = fakeElem(lt.Elem, b.Pos()), fakeElem(rt, b.Pos())
	case rt.Kind == parser.KindArray:
		length = rt.Length
		scalarLeft = true
		lElem, rElem = fakeElem(lt, b.Pos()), fakeElem(rt.Elem, b.Pos())
	}

	_, _, elemResult := c.checkScalarBinary(b.Op, lElem, rElem, b.Pos())

	b.Broadcast = &parser.Broadcast{Length: length, ScalarLeft: scalarLeft}
	b.SetType(parser.ArrayOf(elemResult, length))
	return b
}

// fakeElem produces a zero-value placeholder expression carrying t, used
// only to run the scalar operand-compatibility check for a broadcast
// without needing a real per-element node (the emitter lowers broadcasts
// to a loop and re-derives the element expressions itself).
func fakeElem(t *parser.Type, line int) parser.Expr {
	return parser.NewLit(line, nil, t)
}

func (c *Checker) VisitUnary(u *parser.Unary) parser.Expr {
	operand := c.checkExpr(u.Operand)
	u.Operand = operand
	t := operand.Type()

	switch u.Op {
	case "-":
		if !t.IsNumeric() {
			c.errorf(u.Pos(), "unary '-' requires a numeric operand, got %s", t)
		}
		u.SetType(t)
	case "not":
		switch t.Kind {
		case parser.KindBool, parser.KindInt:
			u.SetType(t)
		default:
			c.errorf(u.Pos(), "unary 'not' requires a bool or int operand, got %s", t)
		}
	}
	return u
}

func (c *Checker) checkIndexExpr(idx parser.Expr, arr *parser.VariableDecl) parser.Expr {
	if idx.Type().Kind != parser.KindInt {
		c.errorf(idx.Pos(), "array index must be of type int, got %s", idx.Type())
	}
	if lit, ok := idx.(*parser.Lit); ok {
		if n, ok := lit.Value.(int64); ok {
			if n < 0 || int(n) >= arr.ArraySize {
				c.errorf(idx.Pos(), "array index %d out of range [0, %d)", n, arr.ArraySize)
			}
		}
	}
	return idx
}

func (c *Checker) VisitIndex(i *parser.Index) parser.Expr {
	sym := c.resolve(i.Name, i.Pos())
	if sym.Var == nil || !sym.Var.IsArray {
		c.errorf(i.Pos(), "%q is not an array", i.Name)
	}
	i.Decl = sym.Var
	idx := c.checkExpr(i.Index)
	i.Index = c.checkIndexExpr(idx, sym.Var)
	i.SetType(sym.Var.VarType)
	return i
}

func (c *Checker) VisitRef(r *parser.Ref) parser.Expr {
	sym := c.resolve(r.Name, r.Pos())
	if sym.Kind == symtab.KindProc {
		c.errorf(r.Pos(), "%q is a procedure and cannot be used as a value", r.Name)
	}
	r.Decl = sym.Var
	r.SetType(sym.Type)
	return r
}

func (c *Checker) VisitLit(l *parser.Lit) parser.Expr {
	return l
}

func (c *Checker) VisitImplicitCast(ic *parser.ImplicitCast) parser.Expr {
	// Never present before type-checking; a pass-through keeps the
	// visitor total in case a later pass re-runs Check on its own output.
	return ic
}

func (c *Checker) VisitCall(call *parser.Call) parser.Expr {
	sym := c.resolve(call.Callee, call.Pos())
	if sym.Kind != symtab.KindProc {
		c.errorf(call.Pos(), "%q is not a procedure", call.Callee)
	}
	call.Decl = sym

	params := sym.Type.Params
	if len(call.Args) != len(params) {
		c.errorf(call.Pos(), "%q expects %d argument(s), got %d", call.Callee, len(params), len(call.Args))
	}

	for i, arg := range call.Args {
		checked := c.checkExpr(arg)
		if i < len(sym.Dirs) && sym.Dirs[i] == parser.DirOut && !isLValue(checked) {
			c.errorf(arg.Pos(), "argument %d to %q must be an l-value (out parameter)", i+1, call.Callee)
		}
		call.Args[i] = c.coerceAssign(params[i], checked, arg.Pos())
	}

	if sym.Type.Return != nil {
		call.SetType(sym.Type.Return)
	} else {
		call.SetType(parser.Void)
	}
	return call
}

func isLValue(e parser.Expr) bool {
	switch e.(type) {
	case *parser.Ref, *parser.Index:
		return true
	default:
		return false
	}
}

// coerceAssign implements spec.md §4.F's assignment coercion table:
// int<->float, int<->bool (nonzero<=>true); string and array require an
// exact type match.
func (c *Checker) coerceAssign(target *parser.Type, value parser.Expr, line int) parser.Expr {
	vt := value.Type()
	if target.Equal(vt) {
		return value
	}
	switch {
	case target.Kind == parser.KindFloat && vt.Kind == parser.KindInt:
		return parser.NewImplicitCast(value, parser.Int, parser.Float)
	case target.Kind == parser.KindInt && vt.Kind == parser.KindFloat:
		return parser.NewImplicitCast(value, parser.Float, parser.Int)
	case target.Kind == parser.KindBool && vt.Kind == parser.KindInt:
		return parser.NewImplicitCast(value, parser.Int, parser.Bool)
	case target.Kind == parser.KindInt && vt.Kind == parser.KindBool:
		return parser.NewImplicitCast(value, parser.Bool, parser.Int)
	default:
		c.errorf(line, "cannot assign value of type %s to target of type %s", vt, target)
		return value
	}
}

func (c *Checker) coerceToBool(e parser.Expr, line int) parser.Expr {
	t := e.Type()
	if t.Kind == parser.KindBool {
		return e
	}
	if t.Kind == parser.KindInt {
		return parser.NewImplicitCast(e, parser.Int, parser.Bool)
	}
	c.errorf(line, "condition must be bool or int, got %s", t)
	return e
}
