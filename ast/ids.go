// ==============================================================================================
// FILE: ast/ids.go
// PURPOSE: Stamps a monotonically increasing, unique node_id onto every node
//          in a single deterministic DFS pre-order pass, and builds the
//          id → Node index later stages use to recover a node's token
//          (hence its line:col) from nothing but the id diagnostics carry.
// ==============================================================================================

package ast

// Index maps a NodeID back to the Node it names, for diagnostics that only
// have the id (e.g. once a type-map lookup has moved past the walk that
// produced it).
type Index struct {
	nodes []Node // nodes[i] has ID() == i+1
}

func (idx *Index) Node(id NodeID) Node {
	if id == 0 || int(id) > len(idx.nodes) {
		return nil
	}
	return idx.nodes[id-1]
}

func (idx *Index) Len() int { return len(idx.nodes) }

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// Pos answers "where is this node in the source" for any id produced by
// this Index, recovering the position from the token the node was built
// from. It returns the zero Pos for an id outside the index.
func (idx *Index) Pos(id NodeID) Pos {
	n := idx.Node(id)
	if n == nil {
		return Pos{}
	}
	tok := n.Tok()
	return Pos{Line: tok.Line, Col: tok.Col}
}

// AssignIDs walks prog in deterministic pre-order (globals, then each proc
// in order, then each func in order, then main) and stamps a fresh id on
// every node starting at 1. Re-running AssignIDs on the same tree reassigns
// the same ids in the same order — it is a no-op with respect to observable
// numbering, per spec.md §8's idempotence property.
func AssignIDs(prog *Program) *Index {
	idx := &Index{}
	stamp := func(n Node) {
		idx.nodes = append(idx.nodes, n)
		n.setID(NodeID(len(idx.nodes)))
	}

	stamp(prog)
	for _, g := range prog.Globals {
		stamp(g)
	}
	for _, p := range prog.Procs {
		walkProcDef(p, stamp)
	}
	for _, f := range prog.Funcs {
		walkFuncDef(f, stamp)
	}
	if prog.Main != nil {
		walkMain(prog.Main, stamp)
	}
	return idx
}

func walkProcDef(p *ProcDef, stamp func(Node)) {
	stamp(p)
	stamp(p.Name)
	for _, param := range p.Params {
		stamp(param)
	}
	walkBody(p.Body, stamp)
}

func walkFuncDef(f *FuncDef, stamp func(Node)) {
	stamp(f)
	stamp(f.Name)
	for _, param := range f.Params {
		stamp(param)
	}
	walkBody(f.Body, stamp)
	walkAtom(f.Ret, stamp)
}

func walkBody(b *Body, stamp func(Node)) {
	stamp(b)
	for _, l := range b.Locals {
		stamp(l)
	}
	walkAlgo(b.Algo, stamp)
}

func walkMain(m *MainDef, stamp func(Node)) {
	stamp(m)
	for _, v := range m.Vars {
		stamp(v)
	}
	walkAlgo(m.Algo, stamp)
}

func walkAlgo(a *Algo, stamp func(Node)) {
	stamp(a)
	for _, instr := range a.Instrs {
		walkInstr(instr, stamp)
	}
}

func walkInstr(i Instr, stamp func(Node)) {
	switch n := i.(type) {
	case *HaltInstr:
		stamp(n)
	case *PrintInstr:
		stamp(n)
		walkOutput(n.Value, stamp)
	case *CallInstr:
		stamp(n)
		walkCallRef(n.Call, stamp)
	case *AssignInstr:
		stamp(n)
		stamp(n.Target)
		if n.RHSCall != nil {
			walkCallRef(n.RHSCall, stamp)
		} else {
			walkTerm(n.RHSTerm, stamp)
		}
	case *LoopWhileInstr:
		stamp(n)
		walkTerm(n.Cond, stamp)
		walkAlgo(n.Body, stamp)
	case *LoopDoUntilInstr:
		stamp(n)
		walkAlgo(n.Body, stamp)
		walkTerm(n.Cond, stamp)
	case *BranchIfInstr:
		stamp(n)
		walkTerm(n.Cond, stamp)
		walkAlgo(n.Then, stamp)
		if n.Else != nil {
			walkAlgo(n.Else, stamp)
		}
	}
}

func walkCallRef(c *CallRef, stamp func(Node)) {
	stamp(c)
	for _, a := range c.Args {
		walkAtom(a, stamp)
	}
}

func walkTerm(t Term, stamp func(Node)) {
	switch n := t.(type) {
	case *AtomTerm:
		stamp(n)
		walkAtom(n.Value, stamp)
	case *UnaryTerm:
		stamp(n)
		walkTerm(n.Operand, stamp)
	case *BinaryTerm:
		stamp(n)
		walkTerm(n.Left, stamp)
		walkTerm(n.Right, stamp)
	}
}

func walkAtom(a Atom, stamp func(Node)) {
	switch n := a.(type) {
	case *VarRef:
		stamp(n)
	case *NumberLit:
		stamp(n)
	}
}

func walkOutput(o Output, stamp func(Node)) {
	switch n := o.(type) {
	case *OutAtom:
		stamp(n)
		walkAtom(n.Value, stamp)
	case *OutString:
		stamp(n)
	}
}
