// ==============================================================================================
// FILE: ast/ast_test.go
// PURPOSE: Validates node_id stamping invariants from spec.md §8: every node
//          gets a unique positive id, count(nodes) == max(node_id), and
//          re-running AssignIDs is a no-op with respect to the numbering.
// ==============================================================================================

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splc/token"
)

func tok(k token.Kind, lexeme string) token.Token {
	return token.Token{Kind: k, Lexeme: lexeme, Line: 1, Col: 1}
}

// sampleProgram builds a minimal but structurally rich program: one global,
// one proc with a param and a local, one func, and a main with a loop and a
// branch — enough to exercise every walker case in ids.go.
func sampleProgram() *Program {
	x := NewIdent(tok(token.IDENT, "x"))
	p := NewIdent(tok(token.IDENT, "p"))
	param := NewIdent(tok(token.IDENT, "a"))
	local := NewIdent(tok(token.IDENT, "b"))

	proc := &ProcDef{
		Name:   p,
		Params: []*Ident{param},
		Body: &Body{
			Locals: []*Ident{local},
			Algo:   &Algo{Instrs: []Instr{&HaltInstr{}}},
		},
	}

	f := NewIdent(tok(token.IDENT, "f"))
	fn := &FuncDef{
		Name: f,
		Body: &Body{
			Algo: &Algo{Instrs: []Instr{&HaltInstr{}}},
		},
		Ret: &NumberLit{Value: 0},
	}

	mv := NewIdent(tok(token.IDENT, "i"))
	cond := &AtomTerm{Value: &VarRef{Name: "i"}}
	branch := &BranchIfInstr{
		Cond: cond,
		Then: &Algo{Instrs: []Instr{&PrintInstr{Value: &OutString{Value: "hi"}}}},
		Else: &Algo{Instrs: []Instr{&HaltInstr{}}},
	}
	loop := &LoopWhileInstr{
		Cond: &AtomTerm{Value: &VarRef{Name: "i"}},
		Body: &Algo{Instrs: []Instr{branch}},
	}
	main := &MainDef{
		Vars: []*Ident{mv},
		Algo: &Algo{Instrs: []Instr{loop, &HaltInstr{}}},
	}

	return &Program{
		Globals: []*Ident{x},
		Procs:   []*ProcDef{proc},
		Funcs:   []*FuncDef{fn},
		Main:    main,
	}
}

func TestAssignIDs_UniquePositiveAndCountMatchesMax(t *testing.T) {
	prog := sampleProgram()
	idx := AssignIDs(prog)

	seen := map[NodeID]bool{}
	var maxID NodeID
	for i := 1; i <= idx.Len(); i++ {
		n := idx.Node(NodeID(i))
		require.NotNil(t, n)
		id := n.ID()
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.Greater(t, id, NodeID(0))
		if id > maxID {
			maxID = id
		}
	}
	assert.Equal(t, NodeID(idx.Len()), maxID)
	assert.Equal(t, len(seen), idx.Len())
}

func TestAssignIDs_Idempotent(t *testing.T) {
	prog := sampleProgram()
	idx1 := AssignIDs(prog)
	first := make([]NodeID, idx1.Len())
	for i := range first {
		first[i] = idx1.Node(NodeID(i + 1)).ID()
	}

	idx2 := AssignIDs(prog)
	require.Equal(t, idx1.Len(), idx2.Len())
	for i := range first {
		assert.Equal(t, first[i], idx2.Node(NodeID(i+1)).ID())
	}
}

func TestAssignIDs_ProgramIsFirst(t *testing.T) {
	prog := sampleProgram()
	AssignIDs(prog)
	assert.Equal(t, NodeID(1), prog.ID())
}

func TestIndex_PosRecoversTokenPosition(t *testing.T) {
	ident := NewIdent(token.Token{Kind: token.IDENT, Lexeme: "x", Line: 7, Col: 3})
	prog := &Program{Globals: []*Ident{ident}}
	idx := AssignIDs(prog)

	pos := idx.Pos(ident.ID())
	assert.Equal(t, 7, pos.Line)
	assert.Equal(t, 3, pos.Col)
}

func TestIndex_PosZeroForUnknownID(t *testing.T) {
	idx := AssignIDs(&Program{})
	assert.Equal(t, Pos{}, idx.Pos(NodeID(999)))
}
