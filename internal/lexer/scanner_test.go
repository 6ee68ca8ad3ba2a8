package lexer

import (
	"testing"

	"srcc/internal/source"
)

func scanAll(t *testing.T, input string) []Token {
	t.Helper()
	buf := source.New("test.src", []byte(input))
	scanner := NewScanner(buf)
	var toks []Token
	for {
		tok, err := scanner.Next()
		if err != nil {
			t.Fatalf("unexpected scan error on %q: %v", input, err)
		}
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			return toks
		}
	}
}

func scanError(t *testing.T, input string) error {
	t.Helper()
	buf := source.New("test.src", []byte(input))
	scanner := NewScanner(buf)
	for {
		tok, err := scanner.Next()
		if err != nil {
			return err
		}
		if tok.Kind == KindEOF {
			return nil
		}
	}
}

func TestScanPunctuatorsAndOperators(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenKind
	}{
		{"( ) [ ] { }", []TokenKind{KindLParen, KindRParen, KindLBracket, KindRBracket, KindLBrace, KindRBrace, KindEOF}},
		{": := ; ,", []TokenKind{KindColon, KindAssign, KindSemi, KindComma, KindEOF}},
		{"+ - * /", []TokenKind{KindPlus, KindMinus, KindStar, KindSlash, KindEOF}},
		{"== != < > <= >=", []TokenKind{KindEq, KindNotEq, KindLt, KindGt, KindLe, KindGe, KindEOF}},
		{"& |", []TokenKind{KindAmp, KindPipe, KindEOF}},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.input)
		if len(toks) != len(tt.want) {
			t.Fatalf("%q: got %d tokens, want %d: %v", tt.input, len(toks), len(tt.want), toks)
		}
		for i, k := range tt.want {
			if toks[i].Kind != k {
				t.Errorf("%q: token %d = %s, want %s", tt.input, i, toks[i].Kind, k)
			}
		}
	}
}

func TestScanReservedWordsVsIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"program", KindProgram},
		{"procedure", KindProcedure},
		{"global", KindGlobal},
		{"return", KindReturn},
		{"true", KindTrue},
		{"false", KindFalse},
		{"int", KindTypeInt},
		{"programmer", KindIdentifier}, // reserved word is a prefix, not the whole identifier
		{"x", KindIdentifier},
		{"_underscore", KindIdentifier},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.input)
		if toks[0].Kind != tt.kind {
			t.Errorf("%q: got %s, want %s", tt.input, toks[0].Kind, tt.kind)
		}
		if toks[0].Lexeme != tt.input {
			t.Errorf("%q: lexeme = %q", tt.input, toks[0].Lexeme)
		}
	}
}

func TestScanNumberKeepsRawLexeme(t *testing.T) {
	tests := []string{"42", "3.14", "1_000", "0.5_5"}
	for _, input := range tests {
		toks := scanAll(t, input)
		if toks[0].Kind != KindNumber {
			t.Errorf("%q: kind = %s, want NUMBER", input, toks[0].Kind)
		}
		if toks[0].Lexeme != input {
			t.Errorf("%q: lexeme = %q, want unstripped raw text", input, toks[0].Lexeme)
		}
	}
}

func TestScanStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello, world.1'2"`)
	if toks[0].Kind != KindString {
		t.Fatalf("kind = %s, want STRING_LITERAL", toks[0].Kind)
	}
	if toks[0].Lexeme != "hello, world.1'2" {
		t.Errorf("lexeme = %q, want quotes stripped", toks[0].Lexeme)
	}
}

func TestScanRejectsIllegalCharacterInString(t *testing.T) {
	if err := scanError(t, `"bad@char"`); err == nil {
		t.Fatal("expected a lexical error for an illegal string character")
	}
}

func TestScanRejectsUnterminatedString(t *testing.T) {
	if err := scanError(t, `"unterminated`); err == nil {
		t.Fatal("expected a lexical error for an unterminated string")
	}
	if err := scanError(t, "\"unterminated\nnext line"); err == nil {
		t.Fatal("expected a lexical error when a string literal crosses a newline")
	}
}

func TestScanRejectsUnexpectedCharacter(t *testing.T) {
	for _, input := range []string{"=", "!", "@", "#"} {
		if err := scanError(t, input); err == nil {
			t.Errorf("%q: expected a lexical error", input)
		}
	}
}

func TestScanSkipsWhitespaceAndComments(t *testing.T) {
	input := "x // line comment\n/* block\ncomment */ y"
	toks := scanAll(t, input)
	if len(toks) != 3 { // x, y, EOF
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	if toks[0].Lexeme != "x" || toks[1].Lexeme != "y" {
		t.Errorf("got lexemes %q, %q", toks[0].Lexeme, toks[1].Lexeme)
	}
	if toks[1].Line != 3 {
		t.Errorf("y's line = %d, want 3 (after the block comment spans two lines)", toks[1].Line)
	}
}

func TestScanEmptyInputProducesOnlyEOF(t *testing.T) {
	toks := scanAll(t, "")
	if len(toks) != 1 || toks[0].Kind != KindEOF {
		t.Errorf("got %v, want a single EOF token", toks)
	}
}
