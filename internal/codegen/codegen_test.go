package codegen

import (
	"strings"
	"testing"

	"srcc/internal/lexer"
	"srcc/internal/optimizer"
	"srcc/internal/parser"
	"srcc/internal/source"
	"srcc/internal/typecheck"
)

// compile runs the full front end (scan, parse, check, optimise at level 0)
// and returns the emitted C text, recovering panics into a test failure.
func compile(t *testing.T, input string, opts Options) string {
	t.Helper()
	buf := source.New("test.src", []byte(input))
	stream := lexer.NewStream("test.src", lexer.NewScanner(buf))
	prog, err := parser.NewParser("test.src", stream).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := typecheck.Check("test.src", prog); err != nil {
		t.Fatalf("check: %v", err)
	}
	prog = optimizer.Optimize(prog, 0)

	text, err := Generate(prog, opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return text
}

func TestMainReturnsZeroOnReturnStatement(t *testing.T) {
	src := "program p is\nbegin\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "int main(void) {") {
		t.Errorf("missing main signature:\n%s", c)
	}
	if !strings.Contains(c, "return 0;") {
		t.Errorf("program-body return should lower to \"return 0;\":\n%s", c)
	}
}

func TestProcedureReturnIsBare(t *testing.T) {
	src := "program p is\n" +
		"procedure noop()\n" +
		"begin\nreturn;\nend procedure\n" +
		"begin\nreturn;\nend program"
	c := compile(t, src, Options{})
	procStart := strings.Index(c, "void noop() {")
	if procStart == -1 {
		t.Fatalf("missing noop signature:\n%s", c)
	}
	procBody := c[procStart:]
	mainStart := strings.Index(procBody, "int main(void)")
	if mainStart == -1 {
		mainStart = len(procBody)
	}
	procBody = procBody[:mainStart]
	if !strings.Contains(procBody, "return;") {
		t.Errorf("procedure return should lower to bare \"return;\":\n%s", procBody)
	}
	if strings.Contains(procBody, "return 0;") {
		t.Errorf("procedure return must not emit \"return 0;\":\n%s", procBody)
	}
}

func TestNoRuntimeOmitsInclude(t *testing.T) {
	src := "program p is\nbegin\nreturn;\nend program"
	withRuntime := compile(t, src, Options{})
	withoutRuntime := compile(t, src, Options{NoRuntime: true})

	if !strings.Contains(withRuntime, `#include "runtime.h"`) {
		t.Errorf("expected runtime include by default:\n%s", withRuntime)
	}
	if strings.Contains(withoutRuntime, `#include "runtime.h"`) {
		t.Errorf("-R should omit the runtime include:\n%s", withoutRuntime)
	}
}

func TestVerboseAnnotatesSourceLines(t *testing.T) {
	src := "program p is\nint x;\nbegin\nx := 1;\nreturn;\nend program"
	c := compile(t, src, Options{Verbose: true})
	if !strings.Contains(c, "// line") {
		t.Errorf("verbose output should contain source line annotations:\n%s", c)
	}
}

func TestGlobalVariableEmittedAtFileScope(t *testing.T) {
	src := "program p is\nglobal int counter;\nbegin\ncounter := 0;\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "int counter;") {
		t.Errorf("global counter should be emitted as a file-scope C variable:\n%s", c)
	}
}

func TestArithmeticAssignEmitsExpression(t *testing.T) {
	src := "program p is\nint x;\nbegin\nx := 2 + 3 * 4;\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "x = ") {
		t.Errorf("expected an assignment to x:\n%s", c)
	}
}

func TestGetStringAssignLowersToBufferCall(t *testing.T) {
	src := "program p is\nstring s;\nbegin\ns := getString();\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "getString(s);") {
		t.Errorf("expected getString to write directly into s:\n%s", c)
	}
	if strings.Contains(c, "getString()") {
		t.Errorf("getString must always be called with a buffer argument:\n%s", c)
	}
}

func TestGetStringAsBareStatementDeclaresScratchBuffer(t *testing.T) {
	src := "program p is\nbegin\ngetString();\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "getString(") {
		t.Errorf("expected a getString call:\n%s", c)
	}
	if strings.Contains(c, "getString();") {
		t.Errorf("getString must always be called with a buffer argument:\n%s", c)
	}
}

func TestProcedureLocalArrayGetsAggregateZeroInitializer(t *testing.T) {
	src := "program p is\n" +
		"procedure f()\n" +
		"int a[4];\n" +
		"begin\nreturn;\nend procedure\n" +
		"begin\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "int a[4] = {0};") {
		t.Errorf("expected a procedure-local array to get an aggregate \"{0}\" initializer, not a scalar one:\n%s", c)
	}
	if strings.Contains(c, "int a[4] = 0;") {
		t.Errorf("a scalar zero initializer on an array type does not compile as C:\n%s", c)
	}
}

func TestOutArrayArgumentPassedBareNotByAddress(t *testing.T) {
	src := "program p is\n" +
		"procedure fill(out int a[4])\n" +
		"begin\nreturn;\nend procedure\n" +
		"int b[4];\n" +
		"begin\nfill(b);\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "fill(b);") {
		t.Errorf("a whole-array out argument should be passed bare (arrays already decay to a pointer):\n%s", c)
	}
	if strings.Contains(c, "fill(&b);") {
		t.Errorf("a whole-array out argument must not be address-of'd:\n%s", c)
	}
}

func TestBooleanAndOrValidatesThenComputes(t *testing.T) {
	src := "program p is\nbool x; bool y; bool z;\nbegin\nz := x & y;\nreturn;\nend program"
	c := compile(t, src, Options{})
	if !strings.Contains(c, "validateBooleanOp(x, '&', y,") {
		t.Errorf("expected validateBooleanOp to run ahead of the boolean and:\n%s", c)
	}
	if !strings.Contains(c, "z = (x & y);") {
		t.Errorf("expected the actual boolean and to be assigned to z:\n%s", c)
	}
}
