package errors

import "testing"

func TestErrorIncludesFileAndLine(t *testing.T) {
	e := New(Syntax, "test.src", 12, "unexpected token %s", "+")
	got := e.Error()
	want := "test.src:12: syntax error: unexpected token +"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorOmitsLineWhenZero(t *testing.T) {
	e := New(IOError, "test.src", 0, "cannot read file")
	got := e.Error()
	want := "test.src: I/O error: cannot read file"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Lexical, 1},
		{Syntax, 1},
		{Semantic, 1},
		{IOError, 2},
		{Toolchain, 3},
	}
	for _, tt := range tests {
		e := New(tt.kind, "test.src", 1, "boom")
		if got := e.ExitCode(); got != tt.want {
			t.Errorf("%s: ExitCode() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestWithSourceAttachesSnippet(t *testing.T) {
	e := New(Lexical, "test.src", 3, "bad char").WithSource("x := @;")
	if e.Source != "x := @;" {
		t.Errorf("Source = %q", e.Source)
	}
}
