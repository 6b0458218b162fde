// ==============================================================================================
// FILE: parser/parser_test.go
// PURPOSE: Exercises the grammar's documented boundary behaviors: the
//          MAXTHREE cap, the ";"-before-"return" guard, the tri-way IDENT
//          dispatch, TERM's three shapes, and the unary/binary commit rule.
// ==============================================================================================

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splc/ast"
	"splc/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	l := lexer.New(src)
	prog, _, err := Parse(l)
	return prog, err
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parseSrc(t, src)
	require.NoError(t, err)
	return prog
}

func TestParse_HelloHalt(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { } halt }`)
	require.Len(t, prog.Main.Algo.Instrs, 1)
	_, ok := prog.Main.Algo.Instrs[0].(*ast.HaltInstr)
	assert.True(t, ok)
}

func TestParse_ProcParamsMaxThreeOK(t *testing.T) {
	prog := mustParse(t, `glob { } proc { p ( a b c ) { local { } halt } } func { } main { var { } halt }`)
	require.Len(t, prog.Procs, 1)
	assert.Len(t, prog.Procs[0].Params, 3)
}

func TestParse_ProcParamsFourthFails(t *testing.T) {
	_, err := parseSrc(t, `glob { } proc { p ( a b c d ) { local { } halt } } func { } main { var { } halt }`)
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParse_LocalsMaxThreeFourthFails(t *testing.T) {
	_, err := parseSrc(t, `glob { } proc { p ( ) { local { a b c d } halt } } func { } main { var { } halt }`)
	require.Error(t, err)
}

func TestParse_GlobalsAndMainVarsUnbounded(t *testing.T) {
	prog := mustParse(t, `glob { a b c d e } proc { } func { } main { var { v w x y z } halt }`)
	assert.Len(t, prog.Globals, 5)
	assert.Len(t, prog.Main.Vars, 5)
}

func TestParse_FuncReturnNotAbsorbedByAlgo(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { f ( ) { local { } halt ; return 0 } } main { var { } halt }`)
	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	require.Len(t, fn.Body.Algo.Instrs, 1)
	ret, ok := fn.Ret.(*ast.NumberLit)
	require.True(t, ok)
	assert.Equal(t, 0, ret.Value)
}

func TestParse_CallInstrDispatch(t *testing.T) {
	prog := mustParse(t, `glob { } proc { p ( ) { local { } halt } } func { } main { var { } p ( ) }`)
	instr := prog.Main.Algo.Instrs[0]
	call, ok := instr.(*ast.CallInstr)
	require.True(t, ok)
	assert.Equal(t, "p", call.Call.Name)
}

func TestParse_AssignTermDispatch(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } x = 5 }`)
	instr := prog.Main.Algo.Instrs[0]
	assign, ok := instr.(*ast.AssignInstr)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Target.Name)
	require.Nil(t, assign.RHSCall)
	atomTerm, ok := assign.RHSTerm.(*ast.AtomTerm)
	require.True(t, ok)
	lit, ok := atomTerm.Value.(*ast.NumberLit)
	require.True(t, ok)
	assert.Equal(t, 5, lit.Value)
}

func TestParse_AssignCallDispatch(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { f ( ) { local { } halt ; return 0 } } main { var { x } x = f ( ) }`)
	instr := prog.Main.Algo.Instrs[0]
	assign, ok := instr.(*ast.AssignInstr)
	require.True(t, ok)
	require.NotNil(t, assign.RHSCall)
	assert.Equal(t, "f", assign.RHSCall.Name)
	assert.Nil(t, assign.RHSTerm)
}

func TestParse_AssignCallWithArgs(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { f ( a ) { local { } halt ; return a } } main { var { x y } x = f ( y ) }`)
	instr := prog.Main.Algo.Instrs[0]
	assign := instr.(*ast.AssignInstr)
	require.NotNil(t, assign.RHSCall)
	require.Len(t, assign.RHSCall.Args, 1)
	ref, ok := assign.RHSCall.Args[0].(*ast.VarRef)
	require.True(t, ok)
	assert.Equal(t, "y", ref.Name)
}

func TestParse_TermBareAtom(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } while x { halt } }`)
	loop := prog.Main.Algo.Instrs[0].(*ast.LoopWhileInstr)
	_, ok := loop.Cond.(*ast.AtomTerm)
	assert.True(t, ok)
}

func TestParse_TermUnary(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } while ( not x ) { halt } }`)
	loop := prog.Main.Algo.Instrs[0].(*ast.LoopWhileInstr)
	unary, ok := loop.Cond.(*ast.UnaryTerm)
	require.True(t, ok)
	assert.Equal(t, "not", string(unary.Op))
}

func TestParse_TermBinary(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } while ( x eq 0 ) { halt } }`)
	loop := prog.Main.Algo.Instrs[0].(*ast.LoopWhileInstr)
	bin, ok := loop.Cond.(*ast.BinaryTerm)
	require.True(t, ok)
	assert.Equal(t, "eq", string(bin.Op))
}

func TestParse_TermMissingBinaryOpFails(t *testing.T) {
	_, err := parseSrc(t, `glob { } proc { } func { } main { var { x } while ( x x ) { halt } }`)
	require.Error(t, err)
}

func TestParse_DoUntilLoop(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } do { halt } until ( x eq 0 ) }`)
	loop, ok := prog.Main.Algo.Instrs[0].(*ast.LoopDoUntilInstr)
	require.True(t, ok)
	_, ok = loop.Cond.(*ast.BinaryTerm)
	assert.True(t, ok)
}

func TestParse_IfElse(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } if x { halt } else { halt } }`)
	branch, ok := prog.Main.Algo.Instrs[0].(*ast.BranchIfInstr)
	require.True(t, ok)
	require.NotNil(t, branch.Else)
}

func TestParse_PrintStringVsAtom(t *testing.T) {
	prog := mustParse(t, `glob { } proc { } func { } main { var { x } print "hi" ; print x }`)
	p1 := prog.Main.Algo.Instrs[0].(*ast.PrintInstr)
	_, ok := p1.Value.(*ast.OutString)
	assert.True(t, ok)
	p2 := prog.Main.Algo.Instrs[1].(*ast.PrintInstr)
	_, ok = p2.Value.(*ast.OutAtom)
	assert.True(t, ok)
}

func TestParse_CallArgsMaxThreeFourthFails(t *testing.T) {
	_, err := parseSrc(t, `glob { } proc { p ( a b c ) { local { } halt } } func { } main { var { w x y z } p ( w x y z ) }`)
	require.Error(t, err)
}

func TestParse_TrailingGarbageFails(t *testing.T) {
	_, err := parseSrc(t, `glob { } proc { } func { } main { var { } halt } extra`)
	require.Error(t, err)
}

func TestParse_NodeIDsAssigned(t *testing.T) {
	prog := mustParse(t, `glob { g } proc { } func { } main { var { x } x = g }`)
	assert.Equal(t, ast.NodeID(1), prog.ID())
	assert.Greater(t, prog.Main.ID(), ast.NodeID(0))
}

func TestParse_VarRefCarriesItsSourcePosition(t *testing.T) {
	prog := mustParse(t, "glob { g }\nproc { } func { } main { var { x }\n  x = g }")
	assign := prog.Main.Algo.Instrs[0].(*ast.AssignInstr)
	rhs := assign.RHSTerm.(*ast.AtomTerm).Value.(*ast.VarRef)
	assert.Equal(t, 3, rhs.Tok().Line)
	assert.Equal(t, "g", rhs.Tok().Lexeme)
	assert.Equal(t, 3, assign.Target.Tok().Line)
}
