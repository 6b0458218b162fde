// ==============================================================================================
// FILE: types/types_test.go
// PURPOSE: Exercises the operator-typing table and the resolved Open
//          Question that a bare Numeric atom is rejected as a condition.
// ==============================================================================================

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splc/ast"
	"splc/lexer"
	"splc/parser"
	"splc/scope"
)

func TestCheck_ComparisonIsBoolean(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { } func { } main { var { i } while ( i > 0 ) { i = ( i minus 1 ) } }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	m, bag := Check(prog)
	assert.True(t, bag.Empty())
	loop := prog.Main.Algo.Instrs[0].(*ast.LoopWhileInstr)
	assert.Equal(t, Boolean, m[loop.Cond.ID()])
}

func TestCheck_BareAtomConditionRejected(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { } func { } main { var { i } while i { halt } }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	require.False(t, bag.Empty())
	assert.Equal(t, "TypeError", string(bag.Diagnostics()[0].Kind))
}

func TestCheck_AssignBooleanToTargetRejected(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { } func { } main { var { x } x = ( 1 eq 1 ) }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	require.False(t, bag.Empty())
}

func TestCheck_FunctionMustReturnNumeric(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { } func { f ( ) { local { } halt ; return 0 } } main { var { x } x = f ( ) }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	assert.True(t, bag.Empty())
}

func TestCheck_CallArityMismatch(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { p ( a b ) { local { } halt } } func { } main { var { x } p ( x ) }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	require.False(t, bag.Empty())
	assert.Equal(t, "TypeError", string(bag.Diagnostics()[0].Kind))
}

func TestCheck_TypeErrorDiagnosticCarriesPosition(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		"glob { } proc { } func { } main { var { i }\n  while i { halt } }"))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	require.False(t, bag.Empty())
	assert.Equal(t, 2, bag.Diagnostics()[0].Pos.Line)
}

func TestCheck_PrintAcceptsNumericAndString(t *testing.T) {
	prog, _, err := parser.Parse(lexer.New(
		`glob { } proc { } func { } main { var { x } print x ; print "hi" }`))
	require.NoError(t, err)
	_, scopeBag := scope.Check(prog)
	require.True(t, scopeBag.Empty())

	_, bag := Check(prog)
	assert.True(t, bag.Empty())
}
