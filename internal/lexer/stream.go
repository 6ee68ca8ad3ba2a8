package lexer

import "srcc/internal/errors"

// Stream is a one-token-lookahead adapter over a Scanner (spec.md §4.C).
type Stream struct {
	scanner *Scanner
	file    string
	lookahead Token
	primed  bool
}

func NewStream(file string, scanner *Scanner) *Stream {
	return &Stream{scanner: scanner, file: file}
}

func (s *Stream) fill() error {
	if s.primed {
		return nil
	}
	tok, err := s.scanner.Next()
	if err != nil {
		return err
	}
	s.lookahead = tok
	s.primed = true
	return nil
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, error) {
	if err := s.fill(); err != nil {
		return Token{}, err
	}
	return s.lookahead, nil
}

// Advance consumes and returns the next token.
func (s *Stream) Advance() (Token, error) {
	if err := s.fill(); err != nil {
		return Token{}, err
	}
	tok := s.lookahead
	s.primed = false
	return tok, nil
}

// Expect consumes the next token if it has the given kind, otherwise
// fails with "expected <kind> at line L, got <kind>" (spec.md §4.C).
func (s *Stream) Expect(kind TokenKind) (Token, error) {
	tok, err := s.Peek()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != kind {
		return Token{}, errors.New(errors.Syntax, s.file, tok.Line,
			"expected %s at line %d, got %s", kind, tok.Line, tok.Kind)
	}
	return s.Advance()
}
