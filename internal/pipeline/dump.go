package pipeline

import (
	"fmt"
	"strings"

	"srcc/internal/lexer"
	"srcc/internal/parser"
)

// DumpTokens renders a token stream one token per line, matching
// lexer.Token.String's "[KIND] "lexeme" (line N)" shape.
func DumpTokens(toks []lexer.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// DumpTree renders prog as an indented S-expression tree. The same
// renderer is used for the AST, the typed tree, and the post-optimiser
// tree. Expression types are not printed; only an ImplicitCast node shows
// its from/to types.
func DumpTree(prog *parser.Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(program %s\n", prog.Name)
	for _, d := range prog.Decls {
		dumpDecl(&b, d, 1)
	}
	for _, s := range prog.Body {
		dumpStmt(&b, s, 1)
	}
	b.WriteString(")\n")
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpDecl(b *strings.Builder, d parser.Decl, depth int) {
	switch decl := d.(type) {
	case *parser.VariableDecl:
		indent(b, depth)
		if decl.IsArray {
			fmt.Fprintf(b, "(var %s %s[%d] global=%v)\n", decl.Name, decl.VarType, decl.ArraySize, decl.Global)
		} else {
			fmt.Fprintf(b, "(var %s %s global=%v)\n", decl.Name, decl.VarType, decl.Global)
		}
	case *parser.ProcedureDecl:
		indent(b, depth)
		fmt.Fprintf(b, "(procedure %s global=%v\n", decl.Name, decl.Global)
		for _, p := range decl.Params {
			indent(b, depth+1)
			fmt.Fprintf(b, "(param %s %s %s)\n", p.Direction, p.Var.Name, p.Var.VarType)
		}
		for _, vd := range decl.Decls {
			dumpDecl(b, vd, depth+1)
		}
		for _, s := range decl.Body {
			dumpStmt(b, s, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	}
}

func dumpStmt(b *strings.Builder, s parser.Stmt, depth int) {
	indent(b, depth)
	switch st := s.(type) {
	case *parser.Assign:
		target := st.Target.Name
		if st.Target.Index != nil {
			target = fmt.Sprintf("%s[%s]", target, dumpExprInline(st.Target.Index))
		}
		fmt.Fprintf(b, "(assign %s %s)\n", target, dumpExprInline(st.Value))
	case *parser.If:
		fmt.Fprintf(b, "(if %s\n", dumpExprInline(st.Cond))
		for _, s := range st.Then {
			dumpStmt(b, s, depth+1)
		}
		if st.Else != nil {
			indent(b, depth)
			b.WriteString("(else)\n")
			for _, s := range st.Else {
				dumpStmt(b, s, depth+1)
			}
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *parser.For:
		fmt.Fprintf(b, "(for %s %s\n", dumpExprInline(st.Init.Value), dumpExprInline(st.Cond))
		for _, s := range st.Body {
			dumpStmt(b, s, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *parser.Return:
		b.WriteString("(return)\n")
	case *parser.CallStmt:
		fmt.Fprintf(b, "(call-stmt %s)\n", dumpExprInline(st.Call))
	default:
		fmt.Fprintf(b, "(unknown-stmt %T)\n", s)
	}
}

func dumpExprInline(e parser.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch ex := e.(type) {
	case *parser.Binary:
		return fmt.Sprintf("(%s %s %s)", ex.Op, dumpExprInline(ex.Lhs), dumpExprInline(ex.Rhs))
	case *parser.Unary:
		return fmt.Sprintf("(%s %s)", ex.Op, dumpExprInline(ex.Operand))
	case *parser.Index:
		return fmt.Sprintf("%s[%s]", ex.Name, dumpExprInline(ex.Index))
	case *parser.Ref:
		return ex.Name
	case *parser.Lit:
		return fmt.Sprintf("%v", ex.Value)
	case *parser.ImplicitCast:
		return fmt.Sprintf("(cast %s->%s %s)", ex.From, ex.To, dumpExprInline(ex.Inner))
	case *parser.Call:
		parts := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			parts[i] = dumpExprInline(a)
		}
		return fmt.Sprintf("(%s %s)", ex.Callee, strings.Join(parts, " "))
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
