// Package symtab implements the compiler's scope stack: declaration and
// lookup of variables, parameters, and procedures across the three scope
// tiers spec.md §3 implies (builtins, the program body, and a procedure
// body). A dedicated, typed table, since this compiler needs static type
// information at declaration time.
package symtab

import (
	"srcc/internal/errors"
	"srcc/internal/parser"
)

// Kind distinguishes the three things a name can resolve to.
type Kind int

const (
	KindVar Kind = iota
	KindParam
	KindProc
)

// Symbol is a single resolved declaration.
type Symbol struct {
	Name   string
	Kind   Kind
	Type   *parser.Type
	Global bool
	Var    *parser.VariableDecl  // set for KindVar/KindParam
	Proc   *parser.ProcedureDecl // set for KindProc
	Dir    parser.Direction      // meaningful for KindParam
	Dirs   []parser.Direction    // per-parameter direction, meaningful for KindProc
}

// scope is one nested block of declarations.
type scope struct {
	names map[string]*Symbol
}

func newScope() *scope { return &scope{names: make(map[string]*Symbol)} }

// Table is a scope stack: index 0 is the root (builtins plus every
// `global`-marked declaration), index 1 the program body, and — while
// checking a procedure — index 2 that procedure's parameters and locals.
// `global` declarations always land in the root scope (index 0) regardless
// of which scope is open when declared, matching spec.md §3's "global-marked
// declarations are visible from any inner scope as though attached to the
// root" and invariant 5 ("procedures declared global are visible from any
// nested procedure") — a plain, non-`global` program-body declaration stays
// in the program scope alone and so is invisible once a procedure scope is
// pushed on top of it (see DESIGN.md).
type Table struct {
	scopes []*scope
	file   string
}

// New creates a table with the root (builtins) scope already open.
func New(file string) *Table {
	t := &Table{file: file}
	t.scopes = append(t.scopes, newScope())
	return t
}

// OpenProgramScope begins the program-body scope. Plain program-body
// declarations land here; a `global` declaration goes to the root scope
// instead (see Declare).
func (t *Table) OpenProgramScope() {
	t.scopes = append(t.scopes, newScope())
}

// OpenProcedureScope begins a fresh scope for one procedure body. Lookup
// never walks through this scope to the program scope beneath it — only
// to the root scope at the bottom of the stack, where builtins and every
// `global` declaration live.
func (t *Table) OpenProcedureScope() {
	t.scopes = append(t.scopes, newScope())
}

// CloseScope discards the innermost scope. Never called on the root or
// program scope.
func (t *Table) CloseScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// rootScopeIndex is always 0: builtins, plus every `global`-marked
// declaration regardless of where it was declared (spec.md §3).
const rootScopeIndex = 0

// Declare adds a symbol to the current innermost scope, or to the root
// scope if sym.Global is set. Returns a Semantic CompileError if the name
// already exists in the target scope (spec.md invariant: no redeclaration
// within the same scope).
func (t *Table) Declare(line int, sym *Symbol) error {
	idx := len(t.scopes) - 1
	if sym.Global {
		idx = rootScopeIndex
	}
	s := t.scopes[idx]
	if _, exists := s.names[sym.Name]; exists {
		return errors.New(errors.Semantic, t.file, line, "%q is already declared in this scope", sym.Name)
	}
	s.names[sym.Name] = sym
	return nil
}

// Lookup tries the innermost scope, then the root scope — exactly the two
// levels spec.md §4.E specifies, never the scopes in between. Concretely,
// from inside a procedure this skips the program-body scope entirely: a
// plain, non-`global` top-level declaration is invisible there, matching
// the "Scope rule" testable property in spec.md §8 ("Non-global
// declarations are invisible outside their enclosing procedure"). A
// `global` declaration is still found because Declare places it directly
// in the root scope. Returns nil if the name is never declared.
func (t *Table) Lookup(name string) *Symbol {
	top := len(t.scopes) - 1
	if sym, ok := t.scopes[top].names[name]; ok {
		return sym
	}
	if top != rootScopeIndex {
		if sym, ok := t.scopes[rootScopeIndex].names[name]; ok {
			return sym
		}
	}
	return nil
}
