// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"

	"srcc/internal/errors"
	"srcc/internal/lexer"
)

// precedence implements the logical-over-additive-over-multiplicative
// ladder from spec.md §4.D. Comparisons aren't named in that ladder; they
// are placed between logical and additive, the conventional slot, and
// documented as a resolved ambiguity in DESIGN.md.
var precedence = map[lexer.TokenKind]int{
	lexer.KindPipe: 1,
	lexer.KindAmp:  2,

	lexer.KindEq:    3,
	lexer.KindNotEq: 3,
	lexer.KindLt:    3,
	lexer.KindGt:    3,
	lexer.KindLe:    3,
	lexer.KindGe:    3,

	lexer.KindPlus:  4,
	lexer.KindMinus: 4,

	lexer.KindStar:  5,
	lexer.KindSlash: 5,
}

// Parser is a strict recursive-descent parser over a lexer.Stream. The
// first syntax error aborts compilation (spec.md §4.D); internally this is
// implemented with panic/recover.
type Parser struct {
	stream *lexer.Stream
	file   string
}

func NewParser(file string, stream *lexer.Stream) *Parser {
	return &Parser{stream: stream, file: file}
}

// Parse consumes the whole token stream and returns the program, or the
// first syntax/lexical error encountered.
func (p *Parser) Parse() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	prog = p.program()
	return
}

func (p *Parser) program() *Program {
	p.expect(lexer.KindProgram)
	nameTok := p.expect(lexer.KindIdentifier)
	p.expect(lexer.KindIs)

	var decls []Decl
	for !p.check(lexer.KindBegin) {
		decls = append(decls, p.decl())
	}
	p.expect(lexer.KindBegin)

	var body []Stmt
	for !p.check(lexer.KindEnd) {
		body = append(body, p.statement())
	}
	p.expect(lexer.KindEnd)
	p.expect(lexer.KindProgram)

	return &Program{Name: nameTok.Lexeme, Decls: decls, Body: body}
}

func (p *Parser) decl() Decl {
	global := p.match(lexer.KindGlobal)
	if p.check(lexer.KindProcedure) {
		return p.procedureDecl(global)
	}
	return p.variableDecl(global)
}

func (p *Parser) variableDecl(global bool) *VariableDecl {
	typ := p.typeToken()
	nameTok := p.expect(lexer.KindIdentifier)
	vd := &VariableDecl{Name: nameTok.Lexeme, VarType: typ, Global: global, Line: nameTok.Line}
	if p.match(lexer.KindLBracket) {
		vd.IsArray = true
		vd.ArraySize = p.arraySize()
		p.expect(lexer.KindRBracket)
	}
	p.expect(lexer.KindSemi)
	return vd
}

func (p *Parser) arraySize() int {
	tok := p.expect(lexer.KindNumber)
	n, err := strconv.Atoi(strings.ReplaceAll(tok.Lexeme, "_", ""))
	if err != nil || n < 0 {
		p.errorf(tok.Line, "array size must be a non-negative integer literal, got %q", tok.Lexeme)
	}
	return n
}

func (p *Parser) typeToken() *Type {
	tok := p.advance()
	switch tok.Kind {
	case lexer.KindTypeInt:
		return Int
	case lexer.KindTypeFloat:
		return Float
	case lexer.KindTypeBool:
		return Bool
	case lexer.KindTypeStr:
		return String
	default:
		p.errorf(tok.Line, "expected a type keyword, got %s", tok.Kind)
		return nil
	}
}

func (p *Parser) procedureDecl(global bool) *ProcedureDecl {
	p.expect(lexer.KindProcedure)
	nameTok := p.expect(lexer.KindIdentifier)
	p.expect(lexer.KindLParen)

	var params []*Param
	if !p.check(lexer.KindRParen) {
		params = append(params, p.param())
		for p.match(lexer.KindComma) {
			params = append(params, p.param())
		}
	}
	p.expect(lexer.KindRParen)

	var ret *Type
	if p.match(lexer.KindColon) {
		ret = p.typeToken()
	}

	var decls []*VariableDecl
	for !p.check(lexer.KindBegin) {
		// Procedures may not declare nested procedures or nested `global`
		// declarations (spec.md §3 invariant 5 restricts `global` to
		// program-body scope); see DESIGN.md.
		decls = append(decls, p.variableDecl(false))
	}
	p.expect(lexer.KindBegin)

	var body []Stmt
	for !p.check(lexer.KindEnd) {
		body = append(body, p.statement())
	}
	p.expect(lexer.KindEnd)
	p.expect(lexer.KindProcedure)

	return &ProcedureDecl{
		Name:       nameTok.Lexeme,
		Params:     params,
		Decls:      decls,
		Body:       body,
		ReturnType: ret,
		Global:     global,
		Line:       nameTok.Line,
	}
}

func (p *Parser) param() *Param {
	dir := DirIn
	if p.match(lexer.KindOut) {
		dir = DirOut
	} else {
		p.match(lexer.KindIn)
	}
	typ := p.typeToken()
	nameTok := p.expect(lexer.KindIdentifier)
	vd := &VariableDecl{Name: nameTok.Lexeme, VarType: typ, Line: nameTok.Line}
	if p.match(lexer.KindLBracket) {
		vd.IsArray = true
		vd.ArraySize = p.arraySize()
		p.expect(lexer.KindRBracket)
	}
	return &Param{Var: vd, Direction: dir}
}

// --- Statements ---

func (p *Parser) statement() Stmt {
	switch {
	case p.check(lexer.KindIf):
		return p.ifStatement()
	case p.check(lexer.KindFor):
		return p.forStatement()
	case p.check(lexer.KindReturn):
		return p.returnStatement()
	case p.check(lexer.KindIdentifier):
		return p.assignOrCallStatement()
	default:
		tok := p.peek()
		p.errorf(tok.Line, "unexpected token %s at start of statement", tok.Kind)
		return nil
	}
}

func (p *Parser) ifStatement() Stmt {
	tok := p.expect(lexer.KindIf)
	cond := p.expression()
	p.expect(lexer.KindThen)

	var thenBranch []Stmt
	for !p.check(lexer.KindElse) && !p.check(lexer.KindEnd) {
		thenBranch = append(thenBranch, p.statement())
	}
	var elseBranch []Stmt
	if p.match(lexer.KindElse) {
		for !p.check(lexer.KindEnd) {
			elseBranch = append(elseBranch, p.statement())
		}
	}
	p.expect(lexer.KindEnd)
	p.expect(lexer.KindIf)
	return &If{stmtBase: stmtBase{tok.Line}, Cond: cond, Then: thenBranch, Else: elseBranch}
}

func (p *Parser) forStatement() Stmt {
	tok := p.expect(lexer.KindFor)
	p.expect(lexer.KindLParen)
	nameTok := p.expect(lexer.KindIdentifier)
	init := p.assignmentTail(nameTok)
	p.expect(lexer.KindSemi)
	cond := p.expression()
	p.expect(lexer.KindRParen)

	var body []Stmt
	for !p.check(lexer.KindEnd) {
		body = append(body, p.statement())
	}
	p.expect(lexer.KindEnd)
	p.expect(lexer.KindFor)
	return &For{stmtBase: stmtBase{tok.Line}, Init: init, Cond: cond, Body: body}
}

func (p *Parser) returnStatement() Stmt {
	tok := p.expect(lexer.KindReturn)
	p.expect(lexer.KindSemi)
	return &Return{stmtBase{tok.Line}}
}

func (p *Parser) assignOrCallStatement() Stmt {
	nameTok := p.expect(lexer.KindIdentifier)
	if p.match(lexer.KindLParen) {
		args := p.argList()
		p.expect(lexer.KindRParen)
		p.expect(lexer.KindSemi)
		return &CallStmt{stmtBase: stmtBase{nameTok.Line}, Call: NewCall(nameTok.Line, nameTok.Lexeme, args)}
	}
	assign := p.assignmentTail(nameTok)
	p.expect(lexer.KindSemi)
	return assign
}

// assignmentTail parses `[ '[' expr ']' ] ':=' expr` after the target name
// has already been consumed, without consuming the trailing ';' — the for
// loop's initialiser needs the bare Assign without its statement terminator.
func (p *Parser) assignmentTail(nameTok lexer.Token) *Assign {
	var index Expr
	if p.match(lexer.KindLBracket) {
		index = p.expression()
		p.expect(lexer.KindRBracket)
	}
	p.expect(lexer.KindAssign)
	value := p.expression()
	return &Assign{
		stmtBase: stmtBase{nameTok.Line},
		Target:   Dest{Name: nameTok.Lexeme, Index: index},
		Value:    value,
	}
}

// --- Expressions ---

func (p *Parser) expression() Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.parseUnary()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Kind]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		left = NewBinary(tok.Line, string(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KindNot:
		p.advance()
		// "not" applies to the whole following arithmetic expression
		// (spec.md §4.D), i.e. everything at additive precedence and
		// tighter (+ - * /), but not comparisons or the other logical
		// operator: "not a & b" is "(not a) & b", but "not x + y" is
		// "not (x + y)".
		return NewUnary(tok.Line, "not", p.parseBinary(4))
	case lexer.KindMinus:
		p.advance()
		return NewUnary(tok.Line, "-", p.parseNegOperand())
	default:
		return p.parsePrimary()
	}
}

// parseNegOperand enforces "unary minus may prefix a name or a number
// literal but not a parenthesised expression" (spec.md §4.D).
func (p *Parser) parseNegOperand() Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KindNumber, lexer.KindIdentifier:
		return p.parsePrimary()
	default:
		p.errorf(tok.Line, "unary '-' may only prefix a name or number literal, got %s", tok.Kind)
		return nil
	}
}

func (p *Parser) parsePrimary() Expr {
	tok := p.advance()
	switch tok.Kind {
	case lexer.KindNumber:
		return parseNumberLit(tok.Lexeme, tok.Line)
	case lexer.KindString:
		return NewLit(tok.Line, tok.Lexeme, String)
	case lexer.KindTrue:
		return NewLit(tok.Line, true, Bool)
	case lexer.KindFalse:
		return NewLit(tok.Line, false, Bool)
	case lexer.KindIdentifier:
		if p.match(lexer.KindLParen) {
			args := p.argList()
			p.expect(lexer.KindRParen)
			return NewCall(tok.Line, tok.Lexeme, args)
		}
		if p.match(lexer.KindLBracket) {
			index := p.expression()
			p.expect(lexer.KindRBracket)
			return NewIndex(tok.Line, tok.Lexeme, index)
		}
		return NewRef(tok.Line, tok.Lexeme)
	case lexer.KindLParen:
		e := p.expression()
		p.expect(lexer.KindRParen)
		return e
	default:
		p.errorf(tok.Line, "unexpected token %s in expression", tok.Kind)
		return nil
	}
}

func (p *Parser) argList() []Expr {
	var args []Expr
	if p.check(lexer.KindRParen) {
		return args
	}
	args = append(args, p.expression())
	for p.match(lexer.KindComma) {
		args = append(args, p.expression())
	}
	return args
}

// parseNumberLit strips underscores and classifies the literal as int or
// float by the presence of '.', per spec.md §4.B.
func parseNumberLit(lexeme string, line int) *Lit {
	clean := strings.ReplaceAll(lexeme, "_", "")
	if strings.Contains(clean, ".") {
		f, _ := strconv.ParseFloat(clean, 64)
		return NewLit(line, f, Float)
	}
	n, _ := strconv.ParseInt(clean, 10, 64)
	return NewLit(line, n, Int)
}

// --- Token-stream helpers ---

func (p *Parser) errorf(line int, format string, args ...interface{}) {
	panic(errors.New(errors.Syntax, p.file, line, format, args...))
}

func (p *Parser) peek() lexer.Token {
	tok, err := p.stream.Peek()
	if err != nil {
		panic(err)
	}
	return tok
}

func (p *Parser) advance() lexer.Token {
	tok, err := p.stream.Advance()
	if err != nil {
		panic(err)
	}
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) lexer.Token {
	tok, err := p.stream.Expect(kind)
	if err != nil {
		panic(err)
	}
	return tok
}
