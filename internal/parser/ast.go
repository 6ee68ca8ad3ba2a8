// internal/parser/ast.go
package parser

// Expr is any SRC expression node. Every node carries its own Type field,
// nil until the type checker's single walk fills it in (spec.md §3,
// invariant 2); a Lit is the exception, typed by the parser when it is
// built. Accept returns the (possibly replaced) expression so that
// the type checker can wrap a node in an ImplicitCast and the optimiser can
// fold a node into a Lit, in place, without a second tree-shaped return
// channel.
type Expr interface {
	Accept(v ExprVisitor) Expr
	Type() *Type
	SetType(*Type)
	Pos() int
}

type exprBase struct {
	Typ  *Type
	Line int
}

func (b *exprBase) Type() *Type     { return b.Typ }
func (b *exprBase) SetType(t *Type) { b.Typ = t }
func (b *exprBase) Pos() int        { return b.Line }

// Broadcast records that a Binary node is an array-scalar or array-array
// broadcast, so the emitter lowers it to a loop instead of a single C
// expression (spec.md §4.F "Array broadcasting").
type Broadcast struct {
	Length     int
	ScalarLeft bool // true if Lhs is the scalar operand
}

// Binary is `lhs op rhs`.
type Binary struct {
	exprBase
	Op        string
	Lhs, Rhs  Expr
	Broadcast *Broadcast // nil unless this node broadcasts
}

func NewBinary(line int, op string, lhs, rhs Expr) *Binary {
	return &Binary{exprBase: exprBase{Line: line}, Op: op, Lhs: lhs, Rhs: rhs}
}
func (b *Binary) Accept(v ExprVisitor) Expr { return v.VisitBinary(b) }

// Unary is `-e` or `not e`.
type Unary struct {
	exprBase
	Op      string
	Operand Expr
}

func NewUnary(line int, op string, operand Expr) *Unary {
	return &Unary{exprBase: exprBase{Line: line}, Op: op, Operand: operand}
}
func (u *Unary) Accept(v ExprVisitor) Expr { return v.VisitUnary(u) }

// Index is `name[e]`.
type Index struct {
	exprBase
	Name  string
	Index Expr
	Decl  *VariableDecl // resolved by the type checker
}

func NewIndex(line int, name string, index Expr) *Index {
	return &Index{exprBase: exprBase{Line: line}, Name: name, Index: index}
}
func (i *Index) Accept(v ExprVisitor) Expr { return v.VisitIndex(i) }

// Ref is a bare identifier used as a value.
type Ref struct {
	exprBase
	Name string
	Decl *VariableDecl // resolved by the type checker
}

func NewRef(line int, name string) *Ref {
	return &Ref{exprBase: exprBase{Line: line}, Name: name}
}
func (r *Ref) Accept(v ExprVisitor) Expr { return v.VisitRef(r) }

// Lit is a literal constant: int64, float64, bool, or string.
type Lit struct {
	exprBase
	Value interface{}
}

func NewLit(line int, value interface{}, t *Type) *Lit {
	l := &Lit{exprBase: exprBase{Line: line}, Value: value}
	l.Typ = t
	return l
}
func (l *Lit) Accept(v ExprVisitor) Expr { return v.VisitLit(l) }

// ImplicitCast is a compiler-inserted coercion between numeric or boolean
// types (spec.md GLOSSARY). Inserted only by the type checker; never
// produced by the parser.
type ImplicitCast struct {
	exprBase
	Inner    Expr
	From, To *Type
}

func NewImplicitCast(inner Expr, from, to *Type) *ImplicitCast {
	c := &ImplicitCast{exprBase: exprBase{Line: inner.Pos()}, Inner: inner, From: from, To: to}
	c.Typ = to
	return c
}
func (c *ImplicitCast) Accept(v ExprVisitor) Expr { return v.VisitImplicitCast(c) }

// Call is a procedure invocation. It doubles as both an expression (a
// built-in call like getInteger() used as the value of `target := value`)
// and, wrapped in CallStmt, a statement whose result is discarded
// (putInteger(x);) — spec.md §3 lists Call once, under Statements, but
// §4.F's built-ins "returning their respective type" require it to also be
// usable as an expression operand; see DESIGN.md.
type Call struct {
	exprBase
	Callee string
	Args   []Expr
	Decl   interface{} // *symtab.Symbol, resolved by the checker (kept as interface{} to avoid an import cycle)
}

func NewCall(line int, callee string, args []Expr) *Call {
	return &Call{exprBase: exprBase{Line: line}, Callee: callee, Args: args}
}
func (c *Call) Accept(v ExprVisitor) Expr { return v.VisitCall(c) }

// ExprVisitor is implemented once per pass (type checker, optimiser,
// emitter) over the closed set of expression variants.
type ExprVisitor interface {
	VisitBinary(*Binary) Expr
	VisitUnary(*Unary) Expr
	VisitIndex(*Index) Expr
	VisitRef(*Ref) Expr
	VisitLit(*Lit) Expr
	VisitImplicitCast(*ImplicitCast) Expr
	VisitCall(*Call) Expr
}
