// Package source wraps the raw bytes of a .src file with a cursor that
// tracks the current 1-based line and strips comments ahead of the
// scanner, per spec.md §4.A: "Comment handling happens here (not in the
// scanner)."
package source

import "srcc/internal/errors"

// Buffer is a forward-only cursor over a single source file's bytes.
type Buffer struct {
	file string
	data []byte
	pos  int
	line int
}

// New wraps data read from file. Line numbering starts at 1.
func New(file string, data []byte) *Buffer {
	return &Buffer{file: file, data: data, pos: 0, line: 1}
}

func (b *Buffer) File() string { return b.file }
func (b *Buffer) Line() int    { return b.line }

func (b *Buffer) AtEnd() bool { return b.pos >= len(b.data) }

// Peek returns the current byte without consuming it, or 0 at end.
func (b *Buffer) Peek() byte {
	if b.AtEnd() {
		return 0
	}
	return b.data[b.pos]
}

// PeekAt returns the byte `offset` positions ahead of the cursor, or 0 past
// the end of the buffer.
func (b *Buffer) PeekAt(offset int) byte {
	i := b.pos + offset
	if i < 0 || i >= len(b.data) {
		return 0
	}
	return b.data[i]
}

// Advance consumes and returns the current byte, tracking line breaks.
func (b *Buffer) Advance() byte {
	c := b.data[b.pos]
	b.pos++
	if c == '\n' {
		b.line++
	}
	return c
}

// SkipTrivia consumes whitespace, line comments ("// ... \n") and nested
// block comments ("/* ... */") until the next significant byte. An
// unterminated block comment at EOF is a fatal lexical error (spec.md §4.A).
func (b *Buffer) SkipTrivia() error {
	for !b.AtEnd() {
		c := b.Peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			b.Advance()
		case c == '/' && b.PeekAt(1) == '/':
			for !b.AtEnd() && b.Peek() != '\n' {
				b.Advance()
			}
		case c == '/' && b.PeekAt(1) == '*':
			if err := b.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (b *Buffer) skipBlockComment() error {
	startLine := b.line
	b.Advance() // '/'
	b.Advance() // '*'
	depth := 1
	for depth > 0 {
		if b.AtEnd() {
			return errors.New(errors.Lexical, b.file, startLine, "unterminated block comment")
		}
		if b.Peek() == '/' && b.PeekAt(1) == '*' {
			b.Advance()
			b.Advance()
			depth++
			continue
		}
		if b.Peek() == '*' && b.PeekAt(1) == '/' {
			b.Advance()
			b.Advance()
			depth--
			continue
		}
		b.Advance()
	}
	return nil
}
