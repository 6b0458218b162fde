// ==============================================================================================
// FILE: compile/compile_test.go
// PURPOSE: Exercises Pipeline as the library surface a driver would use,
//          including the halt-between-passes contract.
// ==============================================================================================

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Tokens(t *testing.T) {
	p := Pipeline{Source: `glob { } proc { } func { } main { var { } halt }`}
	toks, err := p.Tokens()
	require.NoError(t, err)
	assert.NotEmpty(t, toks)
}

func TestPipeline_EmitBasic_HelloHalt(t *testing.T) {
	p := Pipeline{Source: `glob { } proc { } func { } main { var { } halt }`}
	out, diags, err := p.EmitBasic()
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "10 STOP\n", out)
}

func TestPipeline_EmitBasic_HaltsOnScopeError(t *testing.T) {
	p := Pipeline{Source: `glob { } proc { } func { } main { var { } print undeclared ; halt }`}
	out, diags, err := p.EmitBasic()
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NotEmpty(t, diags)
	assert.Equal(t, "UndeclaredVariable", string(diags[0].Kind))
}

func TestPipeline_EmitBasic_HaltsOnTypeError(t *testing.T) {
	p := Pipeline{Source: `glob { } proc { } func { } main { var { i } while i { halt } }`}
	out, diags, err := p.EmitBasic()
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NotEmpty(t, diags)
	assert.Equal(t, "TypeError", string(diags[0].Kind))
}

func TestPipeline_Parse_SyntaxErrorIsFatal(t *testing.T) {
	p := Pipeline{Source: `glob { proc { } func { } main { var { } halt }`}
	_, err := p.Parse()
	require.Error(t, err)
}

func TestPipeline_CheckScopes(t *testing.T) {
	p := Pipeline{Source: `glob { x } proc { } func { } main { var { } x = 1 ; halt }`}
	table, diags, err := p.CheckScopes()
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.NotNil(t, table.Global())
}
