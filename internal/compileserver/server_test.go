package compileserver

import (
	"errors"
	"testing"

	srccerrors "srcc/internal/errors"
)

func TestNewDefaultsMaxConcurrent(t *testing.T) {
	s := New("127.0.0.1", 0, 0)
	if cap(s.sem) != 4 {
		t.Errorf("default MaxConcurrent = %d, want 4", cap(s.sem))
	}
}

func TestNewHonoursExplicitMaxConcurrent(t *testing.T) {
	s := New("127.0.0.1", 0, 8)
	if cap(s.sem) != 8 {
		t.Errorf("cap(sem) = %d, want 8", cap(s.sem))
	}
}

func TestToWireErrorMapsCompileError(t *testing.T) {
	ce := srccerrors.New(srccerrors.Syntax, "test.src", 7, "unexpected token")
	wire := toWireError(ce)
	if wire.Kind != string(srccerrors.Syntax) {
		t.Errorf("Kind = %q", wire.Kind)
	}
	if wire.File != "test.src" || wire.Line != 7 {
		t.Errorf("File/Line = %q/%d", wire.File, wire.Line)
	}
	if wire.Message != "unexpected token" {
		t.Errorf("Message = %q", wire.Message)
	}
}

func TestToWireErrorFallsBackForPlainError(t *testing.T) {
	wire := toWireError(errors.New("boom"))
	if wire.Message != "boom" {
		t.Errorf("Message = %q, want the plain error text", wire.Message)
	}
	if wire.Kind != "" {
		t.Errorf("Kind = %q, want empty for a non-CompileError", wire.Kind)
	}
}
