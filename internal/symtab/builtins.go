package symtab

import "srcc/internal/parser"

// builtinProc describes one runtime-provided procedure for the root scope
// (spec.md §3: "root scope is pre-populated with built-in procedures").
type builtinProc struct {
	name     string
	params   []*parser.Type
	dirs     []parser.Direction
	ret      *parser.Type // nil for void
}

var builtins = []builtinProc{
	{name: "getBool", ret: parser.Bool},
	{name: "getInteger", ret: parser.Int},
	{name: "getFloat", ret: parser.Float},
	{name: "getString", ret: parser.String},
	{name: "putBool", params: []*parser.Type{parser.Bool}, dirs: []parser.Direction{parser.DirIn}},
	{name: "putInteger", params: []*parser.Type{parser.Int}, dirs: []parser.Direction{parser.DirIn}},
	{name: "putFloat", params: []*parser.Type{parser.Float}, dirs: []parser.Direction{parser.DirIn}},
	{name: "putString", params: []*parser.Type{parser.String}, dirs: []parser.Direction{parser.DirIn}},
}

// DeclareBuiltins populates the root scope. Must run before OpenProgramScope.
func (t *Table) DeclareBuiltins() {
	root := t.scopes[0]
	for _, b := range builtins {
		procType := parser.ProcedureType(b.params, b.ret)
		root.names[b.name] = &Symbol{
			Name: b.name,
			Kind: KindProc,
			Type: procType,
			Dirs: b.dirs,
		}
	}
}

// IsBuiltin reports whether name is one of the frozen runtime procedures.
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}
