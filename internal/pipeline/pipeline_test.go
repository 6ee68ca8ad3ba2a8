package pipeline

import (
	"strings"
	"testing"

	"srcc/internal/errors"
)

func TestRunSucceedsOnValidProgram(t *testing.T) {
	src := "program p is\nint x;\nbegin\nx := 2 + 3;\nputInteger(x);\nreturn;\nend program"
	res, err := Run("test.src", []byte(src), Options{OptLevel: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.AST == nil || res.Typed == nil || res.Optimized == nil {
		t.Fatal("expected every stage populated on success")
	}
	if res.C == "" {
		t.Error("expected non-empty emitted C")
	}
	if len(res.Tokens) == 0 {
		t.Error("expected a non-empty token dump")
	}
}

func TestRunStopsAtSyntaxError(t *testing.T) {
	src := "program p is\nbegin\nx := ;\nend program"
	res, err := Run("test.src", []byte(src), Options{})
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	ce, ok := err.(*errors.CompileError)
	if !ok {
		t.Fatalf("error is %T, want *errors.CompileError", err)
	}
	if ce.Kind != errors.Syntax {
		t.Errorf("Kind = %v, want Syntax", ce.Kind)
	}
	if res.AST != nil {
		t.Error("AST should be nil when parsing fails")
	}
}

func TestRunStopsAtSemanticError(t *testing.T) {
	src := "program p is\nbegin\nundeclared := 1;\nreturn;\nend program"
	res, err := Run("test.src", []byte(src), Options{})
	if err == nil {
		t.Fatal("expected a semantic error for an undeclared name")
	}
	if res.AST == nil {
		t.Error("AST should still be populated: parsing succeeded before the type error")
	}
	if res.Typed != nil {
		t.Error("Typed should be nil when type-checking fails")
	}
}

func TestRunOptLevelsProduceSameObservableText(t *testing.T) {
	src := "program p is\nint x;\nbegin\nx := 1 + 0;\nputInteger(x);\nreturn;\nend program"
	for level := 0; level <= 2; level++ {
		res, err := Run("test.src", []byte(src), Options{OptLevel: level})
		if err != nil {
			t.Fatalf("level %d: Run: %v", level, err)
		}
		if !strings.Contains(res.C, "putInteger") {
			t.Errorf("level %d: expected emitted C to still call putInteger:\n%s", level, res.C)
		}
	}
}

func TestDumpTokensIncludesEOF(t *testing.T) {
	res, err := Run("test.src", []byte("program p is\nbegin\nreturn;\nend program"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	dump := DumpTokens(res.Tokens)
	if !strings.Contains(dump, "EOF") {
		t.Errorf("token dump missing EOF:\n%s", dump)
	}
}

func TestDumpTreeRendersProgramName(t *testing.T) {
	res, err := Run("test.src", []byte("program p is\nbegin\nreturn;\nend program"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tree := DumpTree(res.AST)
	if !strings.Contains(tree, "(program p") {
		t.Errorf("tree dump missing program header:\n%s", tree)
	}
}
