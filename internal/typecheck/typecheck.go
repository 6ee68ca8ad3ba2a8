// Package typecheck implements component F: a single top-down walk over
// the parsed tree that attaches a type to every expression node, inserts
// ImplicitCast nodes where a coercion is needed, and resolves every name
// reference to its declaration (spec.md §4.F). Two-pass: procedure
// signatures are collected first so a procedure may call another
// declared later in the same program, then each body is checked.
package typecheck

import (
	"srcc/internal/errors"
	"srcc/internal/parser"
	"srcc/internal/symtab"
)

// Checker walks one program exactly once. The first type error panics a
// *errors.CompileError, recovered by Check.
type Checker struct {
	file       string
	table      *symtab.Table
	procReturn *parser.Type // nil while checking the program body or a void procedure
}

// Check type-checks prog and returns the symbol table it built, or the
// first error. Later passes do not take the table: they read the Decl
// fields the checker attaches to the tree.
func Check(file string, prog *parser.Program) (tbl *symtab.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	c := &Checker{file: file, table: symtab.New(file)}
	c.table.DeclareBuiltins()
	c.table.OpenProgramScope()

	for _, d := range prog.Decls {
		c.declareTop(d)
	}
	for _, d := range prog.Decls {
		if proc, ok := d.(*parser.ProcedureDecl); ok {
			c.checkProcedure(proc)
		}
	}
	c.checkStmts(prog.Body)

	return c.table, nil
}

func varSymbolType(vd *parser.VariableDecl) *parser.Type {
	if vd.IsArray {
		return parser.ArrayOf(vd.VarType, vd.ArraySize)
	}
	return vd.VarType
}

func (c *Checker) declareTop(d parser.Decl) {
	switch d := d.(type) {
	case *parser.VariableDecl:
		c.declareVar(d)
	case *parser.ProcedureDecl:
		c.declareProc(d)
	}
}

func (c *Checker) declareVar(vd *parser.VariableDecl) {
	sym := &symtab.Symbol{Name: vd.Name, Kind: symtab.KindVar, Type: varSymbolType(vd), Global: vd.Global, Var: vd}
	if err := c.table.Declare(vd.Line, sym); err != nil {
		panic(err)
	}
}

func (c *Checker) declareProc(proc *parser.ProcedureDecl) {
	params := make([]*parser.Type, len(proc.Params))
	dirs := make([]parser.Direction, len(proc.Params))
	for i, p := range proc.Params {
		params[i] = varSymbolType(p.Var)
		dirs[i] = p.Direction
	}
	procType := parser.ProcedureType(params, proc.ReturnType)
	sym := &symtab.Symbol{Name: proc.Name, Kind: symtab.KindProc, Type: procType, Global: proc.Global, Proc: proc, Dir: 0}
	sym.Dirs = dirs
	if err := c.table.Declare(proc.Line, sym); err != nil {
		panic(err)
	}
}

func (c *Checker) checkProcedure(proc *parser.ProcedureDecl) {
	c.table.OpenProcedureScope()
	for _, p := range proc.Params {
		sym := &symtab.Symbol{Name: p.Var.Name, Kind: symtab.KindParam, Type: varSymbolType(p.Var), Var: p.Var, Dir: p.Direction}
		if err := c.table.Declare(p.Var.Line, sym); err != nil {
			panic(err)
		}
	}
	for _, vd := range proc.Decls {
		c.declareVar(vd)
	}

	saved := c.procReturn
	c.procReturn = proc.ReturnType
	c.checkStmts(proc.Body)
	c.procReturn = saved

	c.table.CloseScope()
}

func (c *Checker) checkStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		s.Accept(c)
	}
}

func (c *Checker) checkExpr(e parser.Expr) parser.Expr {
	return e.Accept(c)
}

func (c *Checker) errorf(line int, format string, args ...interface{}) {
	panic(errors.New(errors.Semantic, c.file, line, format, args...))
}

func (c *Checker) resolve(name string, line int) *symtab.Symbol {
	sym := c.table.Lookup(name)
	if sym == nil {
		c.errorf(line, "undeclared identifier %q", name)
	}
	return sym
}

// --- StmtVisitor ---

func (c *Checker) VisitAssign(a *parser.Assign) {
	sym := c.resolve(a.Target.Name, a.Pos())
	if sym.Kind == symtab.KindProc {
		c.errorf(a.Pos(), "%q is a procedure and cannot be assigned to", a.Target.Name)
	}
	a.Target.Decl = sym.Var

	targetType := sym.Type
	if a.Target.Index != nil {
		if sym.Var == nil || !sym.Var.IsArray {
			c.errorf(a.Pos(), "%q is not an array", a.Target.Name)
		}
		idx := c.checkExpr(a.Target.Index)
		idx = c.checkIndexExpr(idx, sym.Var)
		a.Target.Index = idx
		targetType = sym.Var.VarType
	}

	value := c.checkExpr(a.Value)
	value = c.coerceAssign(targetType, value, a.Pos())
	a.Value = value
}

func (c *Checker) VisitIf(i *parser.If) {
	cond := c.checkExpr(i.Cond)
	i.Cond = c.coerceToBool(cond, i.Pos())
	c.checkStmts(i.Then)
	if i.Else != nil {
		c.checkStmts(i.Else)
	}
}

func (c *Checker) VisitFor(f *parser.For) {
	f.Init.Accept(c)
	cond := c.checkExpr(f.Cond)
	f.Cond = c.coerceToBool(cond, f.Pos())
	c.checkStmts(f.Body)
}

func (c *Checker) VisitReturn(r *parser.Return) {
	// Legal in both a procedure body and the program body: scenario 1 in
	// spec.md §8 compiles `return;` directly inside `program ... begin`.
}

func (c *Checker) VisitCallStmt(cs *parser.CallStmt) {
	cs.Call.Accept(c)
}
