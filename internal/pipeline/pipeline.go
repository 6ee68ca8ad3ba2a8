// Package pipeline wires the five core stages (scan, parse, check,
// optimise, emit) into the single linear run spec.md §2 describes, and is
// the one place both cmd/srcc and internal/compileserver drive the
// compiler core from. Neither caller touches lexer/parser/typecheck/
// optimizer/codegen directly; both go through Run so the batch CLI and the
// long-lived server can never drift into running the stages differently.
package pipeline

import (
	"srcc/internal/codegen"
	"srcc/internal/errors"
	"srcc/internal/lexer"
	"srcc/internal/optimizer"
	"srcc/internal/parser"
	"srcc/internal/source"
	"srcc/internal/typecheck"
)

// Options controls the one-shot knobs a caller can vary per run: the
// optimisation level (spec.md §6 -O) and the emitted C's verbosity and
// runtime dependency (-v, -R).
type Options struct {
	OptLevel  int
	Verbose   bool
	NoRuntime bool
}

// Result captures every intermediate stage's output, so a caller — the CLI
// driver's -dump flag, or compileserver's per-stage messages — can render
// any of them without re-running the pipeline. AST, Typed and Optimized
// point at one and the same tree, which the type checker and the optimiser
// rewrite in place: no separate pre-check or pre-optimiser copy is kept, so
// after a successful Run all three render as the optimised tree.
type Result struct {
	Tokens    []lexer.Token
	AST       *parser.Program // set once parsing succeeds
	Typed     *parser.Program // set once type-checking succeeds (types + coercions attached)
	Optimized *parser.Program // set once the optimiser has run
	C         string
}

// Run tokenises, parses, type-checks, optimises, and emits C for one
// source file's bytes. It stops at the first stage that fails and returns
// that stage's *errors.CompileError; every stage before the one that
// failed is still populated on the partial Result for inspection, while
// the failing stage's field stays nil.
func Run(file string, src []byte, opts Options) (*Result, error) {
	res := &Result{}

	buf := source.New(file, src)
	scanner := lexer.NewScanner(buf)
	res.Tokens = scanToSlice(scanner)
	// Re-scan for the parser: the parser owns its own Stream/Scanner pair
	// so a lexical error surfaces with the right stage (Syntax calls Peek
	// lazily; a fully pre-scanned token slice would hide a late lexical
	// error like an unterminated string behind whatever token came before
	// it in the dump above).
	stream := lexer.NewStream(file, lexer.NewScanner(source.New(file, src)))

	prog, err := parser.NewParser(file, stream).Parse()
	if err != nil {
		return res, err
	}
	res.AST = prog

	tbl, err := typecheck.Check(file, prog)
	if err != nil {
		return res, err
	}
	_ = tbl
	res.Typed = prog

	optimized := optimizer.Optimize(prog, opts.OptLevel)
	res.Optimized = optimized

	cText, err := generate(file, optimized, opts)
	if err != nil {
		return res, err
	}
	res.C = cText
	return res, nil
}

func generate(file string, prog *parser.Program, opts Options) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	return codegen.Generate(prog, codegen.Options{Verbose: opts.Verbose, NoRuntime: opts.NoRuntime, File: file})
}

// scanToSlice drains a Scanner to EOF for the token-stream inspection
// output (spec.md §2). A lexical error here is swallowed: the parser's own
// scan over a fresh Stream (in Run) is what actually fails compilation, so
// the token dump simply stops at the last token it could produce.
func scanToSlice(s *lexer.Scanner) []lexer.Token {
	var toks []lexer.Token
	for {
		tok, err := s.Next()
		if err != nil {
			return toks
		}
		toks = append(toks, tok)
		if tok.Kind == lexer.KindEOF {
			return toks
		}
	}
}
