// Package codegen implements component H: lowering a type-checked,
// optimised SRC program to C99 source text. It is grounded on the
// teacher's visitor-driven emission style (internal/compiler/compiler.go,
// internal/compiler/stmt_compiler.go) but walks parser.Stmt/parser.Expr
// instead of bytecode, and writes C text instead of bytecode instructions.
package codegen

import (
	"fmt"
	"strings"

	"srcc/internal/parser"
	"srcc/internal/symtab"
)

// Options controls the shape of the emitted translation unit.
type Options struct {
	Verbose   bool   // spec.md §6 -v/--verbose-assembly: annotate statements with source line comments
	NoRuntime bool   // spec.md §6 -R/--no-runtime: omit the #include "runtime.h" line
	File      string // source filename, used only for the verbose header comment
}

// Generator walks a checked, optimised *parser.Program and accumulates C
// source text. It is not reentrant; one Generator emits exactly one
// translation unit.
type Generator struct {
	buf     strings.Builder
	indent  int
	temps   int
	pending []string // statements the current expression lowering needs emitted first
	opts    Options
	inMain  bool // true while lowering the program body, false inside a procedure
}

// Generate lowers prog to a complete C99 translation unit.
func Generate(prog *parser.Program, opts Options) (string, error) {
	g := &Generator{opts: opts}
	g.emitProgram(prog)
	return g.buf.String(), nil
}

func (g *Generator) writeln(format string, args ...interface{}) {
	g.buf.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteString("\n")
}

func (g *Generator) newTemp() string {
	t := fmt.Sprintf("_t%d", g.temps)
	g.temps++
	return t
}

// flushPending emits any statements the most recent expression lowering
// queued (a temporary holding a nested call's result) ahead of the
// statement that needs them, then clears the queue.
func (g *Generator) flushPending() {
	for _, s := range g.pending {
		g.writeln("%s", s)
	}
	g.pending = nil
}

func (g *Generator) emitProgram(prog *parser.Program) {
	if g.opts.Verbose && g.opts.File != "" {
		g.writeln("// generated from %s", g.opts.File)
	}
	if !g.opts.NoRuntime {
		g.writeln(`#include "runtime.h"`)
		g.writeln("")
	}

	var procs []*parser.ProcedureDecl
	var globals []*parser.VariableDecl
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *parser.ProcedureDecl:
			procs = append(procs, decl)
		case *parser.VariableDecl:
			globals = append(globals, decl)
		}
	}

	for _, p := range procs {
		g.writeln("%s;", g.procSignature(p))
	}
	if len(procs) > 0 {
		g.writeln("")
	}

	for _, v := range globals {
		g.writeln("%s;", cDecl(v.Name, declType(v)))
	}
	if len(globals) > 0 {
		g.writeln("")
	}

	for _, p := range procs {
		g.emitProcedure(p)
		g.writeln("")
	}

	g.writeln("int main(void) {")
	g.indent++
	g.temps = 0
	g.inMain = true
	for _, s := range prog.Body {
		g.emitStmt(s)
	}
	g.inMain = false
	g.writeln("return 0;")
	g.indent--
	g.writeln("}")
}

func declType(v *parser.VariableDecl) *parser.Type {
	if v.IsArray {
		return parser.ArrayOf(v.VarType, v.ArraySize)
	}
	return v.VarType
}

func (g *Generator) procSignature(p *parser.ProcedureDecl) string {
	ret := "void"
	parts := make([]string, len(p.Params))
	for i, pr := range p.Params {
		switch {
		case pr.Var.IsArray:
			parts[i] = fmt.Sprintf("%s %s[]", cType(pr.Var.VarType), pr.Var.Name)
		case pr.Var.VarType.Kind == parser.KindString:
			parts[i] = fmt.Sprintf("char %s[%d]", pr.Var.Name, stringBufSize)
		case pr.Direction == parser.DirOut:
			parts[i] = fmt.Sprintf("%s *%s", cType(pr.Var.VarType), pr.Var.Name)
		default:
			parts[i] = fmt.Sprintf("%s %s", cType(pr.Var.VarType), pr.Var.Name)
		}
	}
	return fmt.Sprintf("%s %s(%s)", ret, p.Name, strings.Join(parts, ", "))
}

// emitProcedure writes one user procedure. Per the decision recorded in
// DESIGN.md, every user procedure is void at the C level regardless of a
// declared ReturnType: SRC's `return;` never carries a value, so a
// declared return type only matters to the type checker (it lets the
// procedure be called where an expression is expected, see emitCallAsValue).
func (g *Generator) emitProcedure(p *parser.ProcedureDecl) {
	g.writeln("%s {", g.procSignature(p))
	g.indent++
	g.temps = 0
	g.inMain = false
	for _, v := range p.Decls {
		g.writeln("%s = %s;", cDecl(v.Name, declType(v)), zeroValue(declType(v)))
	}
	for _, s := range p.Body {
		g.emitStmt(s)
	}
	g.writeln("return;")
	g.indent--
	g.writeln("}")
}

func isBuiltinCall(call *parser.Call) bool {
	sym, ok := call.Decl.(*symtab.Symbol)
	return ok && sym.Proc == nil
}
