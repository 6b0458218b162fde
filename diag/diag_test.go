// ==============================================================================================
// FILE: diag/diag_test.go
// PURPOSE: Pins the exact wire format from spec.md §6 and the Bag's
//          accumulate-don't-abort contract.
// ==============================================================================================

package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splc/ast"
)

func TestDiagnostic_StringWithScope(t *testing.T) {
	d := &Diagnostic{Kind: UndeclaredVariable, Message: "'b' is not declared", NodeID: ast.NodeID(7), ScopePath: "Main"}
	assert.Equal(t, "UndeclaredVariable: 'b' is not declared (node #7, scope Main)", d.String())
}

func TestDiagnostic_StringWithoutScope(t *testing.T) {
	d := &Diagnostic{Kind: SyntaxError, Message: "unexpected token", NodeID: ast.NodeID(0)}
	assert.Equal(t, "SyntaxError: unexpected token (node #0)", d.String())
}

func TestFatal_IsAnError(t *testing.T) {
	err := Fatal(LexicalError, 3, "", "bad character")
	require.Error(t, err)
	var d *Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, LexicalError, d.Kind)
}

func TestBag_AccumulatesAndNeverAborts(t *testing.T) {
	bag := NewBag()
	assert.True(t, bag.Empty())

	bag.Add(&Diagnostic{Kind: DuplicateName, Message: "dup", NodeID: 1})
	bag.Add(&Diagnostic{Kind: ParamShadowed, Message: "shadow", NodeID: 2})

	assert.False(t, bag.Empty())
	assert.Len(t, bag.Diagnostics(), 2)
	require.Error(t, bag.Err())
}

func TestBag_ErrNilWhenEmpty(t *testing.T) {
	bag := NewBag()
	assert.NoError(t, bag.Err())
}
