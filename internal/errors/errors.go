// Package errors defines the single error type shared by the compiler
// stages: scanner, parser, and type checker. Every fatal condition in the
// pipeline is reported as a *CompileError. The IOError and Toolchain kinds
// carry the matching exit codes; cmd/srcc prints its own file and
// toolchain failures directly rather than through this type.
package errors

import (
	"fmt"
)

// Kind identifies which stage raised the error and, via ExitCode, which
// process exit status the driver should use.
type Kind string

const (
	Lexical   Kind = "lexical error"
	Syntax    Kind = "syntax error"
	Semantic  Kind = "semantic error"
	IOError   Kind = "I/O error"
	Toolchain Kind = "toolchain error"
)

// CompileError is a single fatal, non-recoverable failure at a known source
// location. The compiler never accumulates more than one: the first error
// from any stage aborts the pass that raised it.
type CompileError struct {
	Kind    Kind
	File    string
	Line    int // 1-based; 0 means "no specific source line"
	Message string
	Source  string // the offending source line, if available
}

func New(kind Kind, file string, line int, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:    kind,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithSource attaches the offending source line for a caret-style display.
func (e *CompileError) WithSource(line string) *CompileError {
	e.Source = line
	return e
}

// Error renders the single-line form required by spec: filename, 1-based
// line number (omitted when 0), the stage kind, then the message. The
// Source snippet is not included.
func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
}

// ExitCode maps the error's Kind to the process exit status from spec.md §6.
func (e *CompileError) ExitCode() int {
	switch e.Kind {
	case Lexical, Syntax, Semantic:
		return 1
	case IOError:
		return 2
	case Toolchain:
		return 3
	default:
		return 1
	}
}
