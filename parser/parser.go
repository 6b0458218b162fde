// ==============================================================================================
// FILE: parser/parser.go
// ==============================================================================================
// PACKAGE: parser
// PURPOSE: A recursive-descent LL(1) parser over SPL's grammar G′. It keeps
//          exactly one token of lookahead (cur, nxt), the same shape the
//          teacher's Pratt parser uses for curToken/peekToken, but SPL's
//          fully-parenthesized TERM grammar needs no precedence table: every
//          production is chosen directly by cur (and, at one spot, nxt).
// ==============================================================================================

package parser

import (
	"fmt"
	"strconv"

	"splc/ast"
	"splc/lexer"
	"splc/token"
)

// SyntaxError is a positioned, non-recoverable parse failure. Per spec.md
// §7, the parser does not attempt error recovery: the first SyntaxError (or
// lexical Error bubbled up from the token pump) ends compilation.
type SyntaxError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s at %d:%d", e.Msg, e.Line, e.Col)
}

// Parser holds the minimal state a one-token-lookahead recursive-descent
// parser needs: the lexer feeding it, and the current/next token.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token
	nxt token.Token
}

// New primes cur/nxt from l. Priming itself can surface a lexical error, so
// New returns one rather than panicking or deferring it to first use.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{lex: l}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// advance shifts cur ← nxt and reads a fresh nxt from the lexer.
func (p *Parser) advance() error {
	p.cur = p.nxt
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.nxt = tok
	return nil
}

// eat asserts cur is of kind k, then advances past it.
func (p *Parser) eat(k token.Kind) error {
	if p.cur.Kind != k {
		return p.syntaxErrorf("expected %s, got %s %q", k, p.cur.Kind, p.cur.Lexeme)
	}
	return p.advance()
}

func (p *Parser) syntaxErrorf(format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: p.cur.Line, Col: p.cur.Col}
}

// Parse runs the full grammar entry production over l and, on success,
// stamps node ids across the resulting tree.
func Parse(l *lexer.Lexer) (*ast.Program, *ast.Index, error) {
	p, err := New(l)
	if err != nil {
		return nil, nil, err
	}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, nil, err
	}
	if p.cur.Kind != token.EOF {
		return nil, nil, p.syntaxErrorf("expected end of input, got %s %q", p.cur.Kind, p.cur.Lexeme)
	}
	idx := ast.AssignIDs(prog)
	return prog, idx, nil
}

// parseProgram implements: glob { VARIABLES } proc { PROCDEFS } func { FUNCDEFS } main { MAINPROG }
func (p *Parser) parseProgram() (*ast.Program, error) {
	start := p.cur
	prog := ast.NewProgram(start)

	if err := p.eat(token.GLOB); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	globals, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	prog.Globals = globals
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}

	if err := p.eat(token.PROC); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	for p.cur.Kind == token.IDENT {
		def, err := p.parseProcDef()
		if err != nil {
			return nil, err
		}
		prog.Procs = append(prog.Procs, def)
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}

	if err := p.eat(token.FUNC); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	for p.cur.Kind == token.IDENT {
		def, err := p.parseFuncDef()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, def)
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}

	if err := p.eat(token.MAIN); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	main, err := p.parseMainProg()
	if err != nil {
		return nil, err
	}
	prog.Main = main
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}

	return prog, nil
}

// parseIdentList reads an unbounded Kleene star of identifiers; used for
// globals and main's variable list, neither of which is capped at three.
func (p *Parser) parseIdentList() ([]*ast.Ident, error) {
	var idents []*ast.Ident
	for p.cur.Kind == token.IDENT {
		idents = append(idents, ast.NewIdent(p.cur))
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return idents, nil
}

// parseMaxThree reads zero to three identifiers, stopping at the first
// non-IDENT token. A fourth identifier is a syntax error (spec.md §8).
func (p *Parser) parseMaxThree() ([]*ast.Ident, error) {
	var idents []*ast.Ident
	for p.cur.Kind == token.IDENT {
		if len(idents) == 3 {
			return nil, p.syntaxErrorf("at most 3 identifiers allowed here, found a 4th: %q", p.cur.Lexeme)
		}
		idents = append(idents, ast.NewIdent(p.cur))
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return idents, nil
}

// parseProcDef implements: NAME ( MAXTHREE ) { local { MAXTHREE } ALGO }
func (p *Parser) parseProcDef() (*ast.ProcDef, error) {
	nameTok := p.cur
	if err := p.eat(token.IDENT); err != nil {
		return nil, err
	}
	if err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewProcDef(nameTok, ast.NewIdent(nameTok), params, body), nil
}

// parseFuncDef implements: NAME ( MAXTHREE ) { local { MAXTHREE } ALGO ; return ATOM }
// The trailing "; return ATOM" must not be absorbed by ALGO's own Kleene
// star — that guard lives in parseAlgo, keyed off token.InstrFirst.
func (p *Parser) parseFuncDef() (*ast.FuncDef, error) {
	nameTok := p.cur
	if err := p.eat(token.IDENT); err != nil {
		return nil, err
	}
	if err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	if err := p.eat(token.LOCAL); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	locals, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	algo, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.SEMI); err != nil {
		return nil, err
	}
	if err := p.eat(token.RETURN); err != nil {
		return nil, err
	}
	ret, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewFuncDef(nameTok, ast.NewIdent(nameTok), params, ast.NewBody(nameTok, locals, algo), ret), nil
}

// parseBody implements: local { MAXTHREE } ALGO
func (p *Parser) parseBody() (*ast.Body, error) {
	start := p.cur
	if err := p.eat(token.LOCAL); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	locals, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	algo, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	return ast.NewBody(start, locals, algo), nil
}

// parseMainProg implements: var { VARIABLES } ALGO
func (p *Parser) parseMainProg() (*ast.MainDef, error) {
	start := p.cur
	if err := p.eat(token.VAR); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	vars, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	algo, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	return ast.NewMainDef(start, vars, algo), nil
}

// parseAlgo implements: INSTR (; INSTR)*, continuing only while cur is ";"
// and nxt is in token.InstrFirst — the guard that keeps a function body's
// trailing "; return ATOM" from being swallowed as another instruction.
func (p *Parser) parseAlgo() (*ast.Algo, error) {
	start := p.cur
	instr, err := p.parseInstr()
	if err != nil {
		return nil, err
	}
	instrs := []ast.Instr{instr}

	for p.cur.Kind == token.SEMI && token.InstrFirst[p.nxt.Kind] {
		if err := p.advance(); err != nil { // consume ";"
			return nil, err
		}
		instr, err := p.parseInstr()
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}
	return ast.NewAlgo(start, instrs), nil
}

// parseInstr selects a production purely from cur, except for IDENT, where
// the tri-way call/assign decision additionally consults nxt.
func (p *Parser) parseInstr() (ast.Instr, error) {
	switch p.cur.Kind {
	case token.HALT:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewHaltInstr(tok), nil
	case token.PRINT:
		return p.parsePrint()
	case token.IF:
		return p.parseBranchIf()
	case token.WHILE:
		return p.parseLoopWhile()
	case token.DO:
		return p.parseLoopDoUntil()
	case token.IDENT:
		return p.parseIdentInstr()
	default:
		return nil, p.syntaxErrorf("unexpected token %s %q at start of instruction", p.cur.Kind, p.cur.Lexeme)
	}
}

func (p *Parser) parsePrint() (ast.Instr, error) {
	tok := p.cur
	if err := p.eat(token.PRINT); err != nil {
		return nil, err
	}
	out, err := p.parseOutput()
	if err != nil {
		return nil, err
	}
	return ast.NewPrintInstr(tok, out), nil
}

// parseIdentInstr resolves the three-way ambiguity at an IDENT:
//   nxt == "("  -> a bare procedure-call statement
//   nxt == "="  -> an assignment; after consuming "=" the parser looks at
//                  the (now current) token exactly the way it looks at any
//                  other token to decide Call vs Term — no extra lookahead
//                  slot is needed because cur/nxt already cover it.
func (p *Parser) parseIdentInstr() (ast.Instr, error) {
	nameTok := p.cur
	switch p.nxt.Kind {
	case token.LPAREN:
		if err := p.advance(); err != nil { // cur now "("
			return nil, err
		}
		call, err := p.parseCallRef(nameTok)
		if err != nil {
			return nil, err
		}
		return ast.NewCallInstr(nameTok, call), nil
	case token.ASSIGN:
		if err := p.advance(); err != nil { // cur now "="
			return nil, err
		}
		if err := p.advance(); err != nil { // cur now first token of RHS
			return nil, err
		}
		target := ast.NewVarRef(nameTok)
		if p.cur.Kind == token.IDENT && p.nxt.Kind == token.LPAREN {
			callNameTok := p.cur
			if err := p.advance(); err != nil { // cur now "("
				return nil, err
			}
			call, err := p.parseCallRef(callNameTok)
			if err != nil {
				return nil, err
			}
			return ast.NewAssignInstr(nameTok, target, call, nil), nil
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return ast.NewAssignInstr(nameTok, target, nil, term), nil
	default:
		return nil, p.syntaxErrorf("expected '(' or '=' after identifier %q, got %s", nameTok.Lexeme, p.nxt.Kind)
	}
}

// parseCallRef implements: ( ARGS ) where cur is "(" on entry and ARGS is a
// MAXTHREE-style space-separated list of atoms.
func (p *Parser) parseCallRef(nameTok token.Token) (*ast.CallRef, error) {
	if err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Atom
	for p.cur.Kind == token.IDENT || p.cur.Kind == token.NUMBER {
		if len(args) == 3 {
			return nil, p.syntaxErrorf("at most 3 call arguments allowed")
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, atom)
	}
	if err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewCallRef(nameTok, nameTok.Lexeme, args), nil
}

// parseBranchIf implements: if COND { THEN } (else { ELSE })?
func (p *Parser) parseBranchIf() (ast.Instr, error) {
	tok := p.cur
	if err := p.eat(token.IF); err != nil {
		return nil, err
	}
	cond, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	then, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	var elseAlgo *ast.Algo
	if p.cur.Kind == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.eat(token.LBRACE); err != nil {
			return nil, err
		}
		elseAlgo, err = p.parseAlgo()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.RBRACE); err != nil {
			return nil, err
		}
	}
	return ast.NewBranchIfInstr(tok, cond, then, elseAlgo), nil
}

// parseLoopWhile implements: while COND { BODY }
func (p *Parser) parseLoopWhile() (ast.Instr, error) {
	tok := p.cur
	if err := p.eat(token.WHILE); err != nil {
		return nil, err
	}
	cond, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewLoopWhileInstr(tok, cond, body), nil
}

// parseLoopDoUntil implements: do { BODY } until COND
func (p *Parser) parseLoopDoUntil() (ast.Instr, error) {
	tok := p.cur
	if err := p.eat(token.DO); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBRACE); err != nil {
		return nil, err
	}
	if err := p.eat(token.UNTIL); err != nil {
		return nil, err
	}
	cond, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return ast.NewLoopDoUntilInstr(tok, body, cond), nil
}

// parseOutput implements: STRING | atom
func (p *Parser) parseOutput() (ast.Output, error) {
	if p.cur.Kind == token.STRING {
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewOutString(tok, tok.Lexeme), nil
	}
	tok := p.cur
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return ast.NewOutAtom(tok, atom), nil
}

// parseAtom implements: IDENT | NUMBER
func (p *Parser) parseAtom() (ast.Atom, error) {
	switch p.cur.Kind {
	case token.IDENT:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewVarRef(tok), nil
	case token.NUMBER:
		tok := p.cur
		n, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, p.syntaxErrorf("malformed number literal %q", p.cur.Lexeme)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewNumberLit(tok, n), nil
	default:
		return nil, p.syntaxErrorf("expected an identifier or number, got %s %q", p.cur.Kind, p.cur.Lexeme)
	}
}

// parseTerm implements TERM's three shapes: a bare atom, a parenthesized
// unary ( neg|not T ), or a parenthesized binary ( T OP T ). Plain
// parenthesization "( TERM )" with no operator is rejected by construction:
// after "(" the parser commits to either a UNOP prefix or a left operand
// followed by a mandatory BINOP.
func (p *Parser) parseTerm() (ast.Term, error) {
	switch p.cur.Kind {
	case token.IDENT, token.NUMBER:
		tok := p.cur
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.NewAtomTerm(tok, atom), nil
	case token.LPAREN:
		return p.parseParenTerm()
	default:
		return nil, p.syntaxErrorf("expected a term, got %s %q", p.cur.Kind, p.cur.Lexeme)
	}
}

func (p *Parser) parseParenTerm() (ast.Term, error) {
	start := p.cur
	if err := p.eat(token.LPAREN); err != nil {
		return nil, err
	}
	if token.UnaryOps[p.cur.Kind] {
		op := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.RPAREN); err != nil {
			return nil, err
		}
		return ast.NewUnaryTerm(start, op, operand), nil
	}

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if !token.BinaryOps[p.cur.Kind] {
		return nil, p.syntaxErrorf("expected binary op, got %s %q", p.cur.Kind, p.cur.Lexeme)
	}
	op := p.cur.Kind
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewBinaryTerm(start, op, left, right), nil
}
