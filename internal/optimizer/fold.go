package optimizer

import "srcc/internal/parser"

// VisitBinary folds constant sub-expressions (level 1) and applies
// algebraic identities (level 2). It never folds away a Call anywhere in
// the operand tree, since calls may perform I/O.
func (o *Optimizer) VisitBinary(b *parser.Binary) parser.Expr {
	b.Lhs = o.optimizeExpr(b.Lhs)
	b.Rhs = o.optimizeExpr(b.Rhs)

	if o.level >= 1 && b.Broadcast == nil {
		if folded := foldBinaryConst(b); folded != nil {
			return folded
		}
	}
	if o.level >= 2 && b.Broadcast == nil {
		if folded := algebraicIdentity(b); folded != nil {
			return folded
		}
	}
	return b
}

func foldBinaryConst(b *parser.Binary) parser.Expr {
	lhs, ok := b.Lhs.(*parser.Lit)
	if !ok {
		return nil
	}
	rhs, ok := b.Rhs.(*parser.Lit)
	if !ok {
		return nil
	}

	switch l := lhs.Value.(type) {
	case int64:
		r, ok := rhs.Value.(int64)
		if !ok {
			return nil
		}
		return foldIntOp(b, l, r)
	case float64:
		r, ok := rhs.Value.(float64)
		if !ok {
			return nil
		}
		return foldFloatOp(b, l, r)
	case bool:
		r, ok := rhs.Value.(bool)
		if !ok {
			return nil
		}
		return foldBoolOp(b, l, r)
	case string:
		r, ok := rhs.Value.(string)
		if !ok {
			return nil
		}
		return foldStringOp(b, l, r)
	}
	return nil
}

func foldIntOp(b *parser.Binary, l, r int64) parser.Expr {
	switch b.Op {
	case "+":
		return parser.NewLit(b.Pos(), l+r, parser.Int)
	case "-":
		return parser.NewLit(b.Pos(), l-r, parser.Int)
	case "*":
		return parser.NewLit(b.Pos(), l*r, parser.Int)
	case "/":
		if r == 0 {
			return nil // defer the division-by-zero failure to the runtime
		}
		return parser.NewLit(b.Pos(), l/r, parser.Int)
	case "==":
		return parser.NewLit(b.Pos(), l == r, parser.Bool)
	case "!=":
		return parser.NewLit(b.Pos(), l != r, parser.Bool)
	case "<":
		return parser.NewLit(b.Pos(), l < r, parser.Bool)
	case ">":
		return parser.NewLit(b.Pos(), l > r, parser.Bool)
	case "<=":
		return parser.NewLit(b.Pos(), l <= r, parser.Bool)
	case ">=":
		return parser.NewLit(b.Pos(), l >= r, parser.Bool)
	case "&":
		return parser.NewLit(b.Pos(), l&r, parser.Int)
	case "|":
		return parser.NewLit(b.Pos(), l|r, parser.Int)
	}
	return nil
}

func foldFloatOp(b *parser.Binary, l, r float64) parser.Expr {
	switch b.Op {
	case "+":
		return parser.NewLit(b.Pos(), l+r, parser.Float)
	case "-":
		return parser.NewLit(b.Pos(), l-r, parser.Float)
	case "*":
		return parser.NewLit(b.Pos(), l*r, parser.Float)
	case "/":
		if r == 0 {
			return nil
		}
		return parser.NewLit(b.Pos(), l/r, parser.Float)
	case "==":
		return parser.NewLit(b.Pos(), l == r, parser.Bool)
	case "!=":
		return parser.NewLit(b.Pos(), l != r, parser.Bool)
	case "<":
		return parser.NewLit(b.Pos(), l < r, parser.Bool)
	case ">":
		return parser.NewLit(b.Pos(), l > r, parser.Bool)
	case "<=":
		return parser.NewLit(b.Pos(), l <= r, parser.Bool)
	case ">=":
		return parser.NewLit(b.Pos(), l >= r, parser.Bool)
	}
	return nil
}

func foldBoolOp(b *parser.Binary, l, r bool) parser.Expr {
	switch b.Op {
	case "==":
		return parser.NewLit(b.Pos(), l == r, parser.Bool)
	case "!=":
		return parser.NewLit(b.Pos(), l != r, parser.Bool)
	case "&":
		return parser.NewLit(b.Pos(), l && r, parser.Bool)
	case "|":
		return parser.NewLit(b.Pos(), l || r, parser.Bool)
	}
	return nil
}

func foldStringOp(b *parser.Binary, l, r string) parser.Expr {
	switch b.Op {
	case "==":
		return parser.NewLit(b.Pos(), l == r, parser.Bool)
	case "!=":
		return parser.NewLit(b.Pos(), l != r, parser.Bool)
	}
	return nil
}

// algebraicIdentity implements level 2's x+0, x*1, x*0, x-x, x&true, x|false
// style simplifications. Only a *parser.Ref counts as "pure": it has no
// side effect and is safe to drop or duplicate. Never called on a
// broadcast Binary (see VisitBinary): collapsing "a := a + 0" to the bare
// Ref "a" would discard the array op, leaving codegen nothing to tell it
// apart from a scalar assignment.
func algebraicIdentity(b *parser.Binary) parser.Expr {
	isZeroInt := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == int64(0) }
	isOneInt := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == int64(1) }
	isZeroFloat := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == float64(0) }
	isOneFloat := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == float64(1) }
	isTrue := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == true }
	isFalse := func(e parser.Expr) bool { lit, ok := e.(*parser.Lit); return ok && lit.Value == false }
	isPureRef := func(e parser.Expr) bool { _, ok := e.(*parser.Ref); return ok }

	switch b.Op {
	case "+":
		if isZeroInt(b.Rhs) || isZeroFloat(b.Rhs) {
			return b.Lhs
		}
		if isZeroInt(b.Lhs) || isZeroFloat(b.Lhs) {
			return b.Rhs
		}
	case "-":
		if isZeroInt(b.Rhs) || isZeroFloat(b.Rhs) {
			return b.Lhs
		}
		if isPureRef(b.Lhs) && isPureRef(b.Rhs) && b.Lhs.(*parser.Ref).Name == b.Rhs.(*parser.Ref).Name {
			if b.Type().Kind == parser.KindFloat {
				return parser.NewLit(b.Pos(), float64(0), parser.Float)
			}
			return parser.NewLit(b.Pos(), int64(0), parser.Int)
		}
	case "*":
		if isOneInt(b.Rhs) || isOneFloat(b.Rhs) {
			return b.Lhs
		}
		if isOneInt(b.Lhs) || isOneFloat(b.Lhs) {
			return b.Rhs
		}
		if (isZeroInt(b.Rhs) || isZeroFloat(b.Rhs)) && isPureRef(b.Lhs) {
			return b.Rhs
		}
		if (isZeroInt(b.Lhs) || isZeroFloat(b.Lhs)) && isPureRef(b.Rhs) {
			return b.Lhs
		}
	case "&":
		if isTrue(b.Rhs) {
			return b.Lhs
		}
		if isTrue(b.Lhs) {
			return b.Rhs
		}
	case "|":
		if isFalse(b.Rhs) {
			return b.Lhs
		}
		if isFalse(b.Lhs) {
			return b.Rhs
		}
	}
	return nil
}

func (o *Optimizer) VisitUnary(u *parser.Unary) parser.Expr {
	u.Operand = o.optimizeExpr(u.Operand)
	if o.level < 1 {
		return u
	}
	lit, ok := u.Operand.(*parser.Lit)
	if !ok {
		return u
	}
	switch u.Op {
	case "-":
		switch v := lit.Value.(type) {
		case int64:
			return parser.NewLit(u.Pos(), -v, parser.Int)
		case float64:
			return parser.NewLit(u.Pos(), -v, parser.Float)
		}
	case "not":
		switch v := lit.Value.(type) {
		case bool:
			return parser.NewLit(u.Pos(), !v, parser.Bool)
		case int64:
			return parser.NewLit(u.Pos(), ^v, parser.Int)
		}
	}
	return u
}

func (o *Optimizer) VisitIndex(i *parser.Index) parser.Expr {
	i.Index = o.optimizeExpr(i.Index)
	return i
}

func (o *Optimizer) VisitRef(r *parser.Ref) parser.Expr {
	return r
}

func (o *Optimizer) VisitLit(l *parser.Lit) parser.Expr {
	return l
}

func (o *Optimizer) VisitImplicitCast(ic *parser.ImplicitCast) parser.Expr {
	ic.Inner = o.optimizeExpr(ic.Inner)
	if o.level >= 1 {
		if lit, ok := ic.Inner.(*parser.Lit); ok {
			if folded := foldCast(ic, lit); folded != nil {
				return folded
			}
		}
	}
	return ic
}

func foldCast(ic *parser.ImplicitCast, lit *parser.Lit) parser.Expr {
	switch v := lit.Value.(type) {
	case int64:
		switch ic.To.Kind {
		case parser.KindFloat:
			return parser.NewLit(ic.Pos(), float64(v), parser.Float)
		case parser.KindBool:
			return parser.NewLit(ic.Pos(), v != 0, parser.Bool)
		}
	case float64:
		if ic.To.Kind == parser.KindInt {
			return parser.NewLit(ic.Pos(), int64(v), parser.Int)
		}
	case bool:
		if ic.To.Kind == parser.KindInt {
			if v {
				return parser.NewLit(ic.Pos(), int64(1), parser.Int)
			}
			return parser.NewLit(ic.Pos(), int64(0), parser.Int)
		}
	}
	return nil
}

// VisitCall never folds: calls may perform I/O and their order and
// occurrence must survive optimisation (spec.md §4.G).
func (o *Optimizer) VisitCall(call *parser.Call) parser.Expr {
	for i, arg := range call.Args {
		call.Args[i] = o.optimizeExpr(arg)
	}
	return call
}
