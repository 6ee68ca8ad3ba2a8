package codegen

import (
	"fmt"

	"srcc/internal/parser"
)

// stringBufSize is the fixed buffer size spec.md §4.H assigns every SRC
// string variable.
const stringBufSize = 256

// cType maps a SRC type to its C spelling for a variable declaration.
// Arrays and strings need the variable name spliced into the declarator,
// so cDecl (not cType) is what callers use for an actual declaration.
func cType(t *parser.Type) string {
	switch t.Kind {
	case parser.KindInt, parser.KindBool:
		return "int"
	case parser.KindFloat:
		return "float"
	case parser.KindString:
		return "char"
	case parser.KindVoid:
		return "void"
	default:
		return "int"
	}
}

// cDecl renders a full C declarator for a SRC variable: "int x", "float
// a[4]", "char s[256]".
func cDecl(name string, t *parser.Type) string {
	switch t.Kind {
	case parser.KindString:
		return fmt.Sprintf("char %s[%d]", name, stringBufSize)
	case parser.KindArray:
		return fmt.Sprintf("%s %s[%d]", cType(t.Elem), name, t.Length)
	default:
		return fmt.Sprintf("%s %s", cType(t), name)
	}
}

// zeroValue renders the C initializer for a SRC-declared local's zero
// value at procedure entry (spec.md §4.H: "temporaries reset to 0 at
// procedure entry" applies equally to every procedure-local declaration).
// An array needs an aggregate initializer, never a scalar one — "= 0" on a
// C array type doesn't compile — so KindArray gets "{0}", which C99 zero-
// initializes every element of regardless of the element type.
func zeroValue(t *parser.Type) string {
	switch t.Kind {
	case parser.KindFloat:
		return "0.0f"
	case parser.KindString:
		return `""`
	case parser.KindArray:
		return "{0}"
	default:
		return "0"
	}
}
