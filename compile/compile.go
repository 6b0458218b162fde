// ==============================================================================================
// FILE: compile/compile.go
// ==============================================================================================
// PACKAGE: compile
// PURPOSE: The library surface every driver (cmd/splc, repl, wasm) is a thin
//          adapter over. Pipeline runs the five stages one at a time, each
//          method returning the stage's result plus whatever diagnostics
//          that stage produced — the same split the CLI flags expose
//          (--check-scopes, --type-check, --codegen, --emit-basic) but
//          usable without a process boundary. Grounded in the teacher's
//          main.go/repl.go, which both call lexer->parser->evaluator
//          directly rather than through a shared driver; Pipeline
//          consolidates that duplicated sequence into one place.
// ==============================================================================================

package compile

import (
	"splc/ast"
	"splc/basic"
	"splc/codegen"
	"splc/diag"
	"splc/lexer"
	"splc/parser"
	"splc/scope"
	"splc/token"
	"splc/types"
)

// Pipeline runs the compiler stages over Source, one at a time. It holds no
// mutable state of its own beyond what a single compilation produces, so a
// Pipeline value can be reused across calls to re-run later stages without
// re-running earlier ones by threading their results through by hand.
type Pipeline struct {
	Source string
}

// Tokens lexes Source in full. A lexical error is fatal and stops at the
// first bad character, per spec.md §7 — there is no per-token diagnostic
// list to accumulate.
func (p Pipeline) Tokens() ([]token.Token, error) {
	l := lexer.New(p.Source)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// ParseResult bundles the parsed tree with the node index AssignIDs built,
// since every later stage needs the index to resolve a NodeID back to a
// token for position reporting.
type ParseResult struct {
	Program *ast.Program
	Index   *ast.Index
}

// Parse lexes and parses Source. A syntax error is fatal, per spec.md §7.
func (p Pipeline) Parse() (ParseResult, error) {
	prog, idx, err := parser.Parse(lexer.New(p.Source))
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResult{Program: prog, Index: idx}, nil
}

// CheckScopes parses Source, then runs the scope checker. Unlike Parse, a
// bad scope does not stop the pass: every diagnostic the checker finds is
// returned together, never just the first.
func (p Pipeline) CheckScopes() (*scope.SymbolTable, []*diag.Diagnostic, error) {
	parsed, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	table, bag := scope.Check(parsed.Program)
	return table, bag.Diagnostics(), nil
}

// CheckTypes parses Source, checks scopes, then runs the type checker. Type
// checking is only meaningful over a scope-clean program, so a non-empty
// scope bag short-circuits straight to returning those diagnostics.
func (p Pipeline) CheckTypes() (types.Map, []*diag.Diagnostic, error) {
	parsed, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	_, scopeBag := scope.Check(parsed.Program)
	if !scopeBag.Empty() {
		return nil, scopeBag.Diagnostics(), nil
	}
	m, typeBag := types.Check(parsed.Program)
	return m, typeBag.Diagnostics(), nil
}

// Generate runs the full static pipeline and lowers the result into the
// unnumbered intermediate listing. Any scope or type diagnostic halts
// before codegen runs, per spec.md §7's "pipeline halts between passes only
// when the bag is non-empty" contract.
func (p Pipeline) Generate() ([]codegen.Line, []*diag.Diagnostic, error) {
	parsed, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	_, scopeBag := scope.Check(parsed.Program)
	if !scopeBag.Empty() {
		return nil, scopeBag.Diagnostics(), nil
	}
	_, typeBag := types.Check(parsed.Program)
	if !typeBag.Empty() {
		return nil, typeBag.Diagnostics(), nil
	}
	lines, err := codegen.Generate(parsed.Program)
	if err != nil {
		return nil, nil, err
	}
	return lines, nil, nil
}

// EmitBasic runs Generate, then lowers the intermediate listing to numbered
// BASIC text.
func (p Pipeline) EmitBasic() (string, []*diag.Diagnostic, error) {
	lines, diags, err := p.Generate()
	if err != nil || len(diags) > 0 {
		return "", diags, err
	}
	out, err := basic.Emit(lines)
	if err != nil {
		return "", nil, err
	}
	return out, nil, nil
}
