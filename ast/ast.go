// ==============================================================================================
// FILE: ast/ast.go
// ==============================================================================================
// PACKAGE: ast
// PURPOSE: The typed Abstract Syntax Tree the Parser builds and every later
//          stage (scope checker, type checker, code generator) walks via a
//          Go type switch. Every node carries the token it was built from
//          (for line:col diagnostics) and, after AssignIDs runs once, a
//          stable node_id used as the primary key into the scope table and
//          type map.
// ==============================================================================================

package ast

import "splc/token"

// NodeID is the stable, unique, positive key stamped onto every node by
// AssignIDs. It is the only thing the symbol table and type map ever use to
// refer back to a node — never a pointer — keeping ownership linear per
// spec.md §9.
type NodeID uint32

// Node is the common interface every AST node satisfies. Dispatch elsewhere
// in the compiler is a type switch over the concrete variant, not virtual
// methods; Node exists only to let every stage carry nodes generically and
// to host the id/position bookkeeping AssignIDs needs.
type Node interface {
	ID() NodeID
	setID(NodeID)
	Tok() token.Token
}

// base is embedded by every concrete node to provide the common id/position
// fields without repeating them on every type.
type base struct {
	id  NodeID
	tok token.Token
}

func (b *base) ID() NodeID         { return b.id }
func (b *base) setID(id NodeID)    { b.id = id }
func (b *base) Tok() token.Token   { return b.tok }
func newBase(t token.Token) base   { return base{tok: t} }

// EntryKind classifies a declaration recorded in the scope table.
type EntryKind string

const (
	EntryVar   EntryKind = "var"
	EntryParam EntryKind = "param"
	EntryProc  EntryKind = "proc"
	EntryFunc  EntryKind = "func"
)

// Entry is the scope table's declaration record. It is plain data — it
// never points back into the AST, only at a DeclNodeID — so VarRef.Resolved
// and CallRef.Resolved can reference it without ast importing the scope
// package (which itself must import ast to walk the tree).
type Entry struct {
	Name       string
	Kind       EntryKind
	ScopeID    int
	DeclNodeID NodeID
}

// ----------------------------------------------------------------------------------------------
// Declarations (Ident is used for every name a declaration introduces:
// globals, params, locals, main variables, proc/func names)
// ----------------------------------------------------------------------------------------------

type Ident struct {
	base
	Name string
}

func NewIdent(t token.Token) *Ident { return &Ident{base: newBase(t), Name: t.Lexeme} }

// ----------------------------------------------------------------------------------------------
// Program structure
// ----------------------------------------------------------------------------------------------

type Program struct {
	base
	Globals []*Ident
	Procs   []*ProcDef
	Funcs   []*FuncDef
	Main    *MainDef
}

func NewProgram(t token.Token) *Program { return &Program{base: newBase(t)} }

type ProcDef struct {
	base
	Name   *Ident
	Params []*Ident // 0..3
	Body   *Body
}

func NewProcDef(t token.Token, name *Ident, params []*Ident, body *Body) *ProcDef {
	return &ProcDef{base: newBase(t), Name: name, Params: params, Body: body}
}

type FuncDef struct {
	base
	Name   *Ident
	Params []*Ident // 0..3
	Body   *Body
	Ret    Atom
}

func NewFuncDef(t token.Token, name *Ident, params []*Ident, body *Body, ret Atom) *FuncDef {
	return &FuncDef{base: newBase(t), Name: name, Params: params, Body: body, Ret: ret}
}

type Body struct {
	base
	Locals []*Ident // 0..3
	Algo   *Algo
}

func NewBody(t token.Token, locals []*Ident, algo *Algo) *Body {
	return &Body{base: newBase(t), Locals: locals, Algo: algo}
}

type MainDef struct {
	base
	Vars []*Ident
	Algo *Algo
}

func NewMainDef(t token.Token, vars []*Ident, algo *Algo) *MainDef {
	return &MainDef{base: newBase(t), Vars: vars, Algo: algo}
}

type Algo struct {
	base
	Instrs []Instr // >= 1
}

func NewAlgo(t token.Token, instrs []Instr) *Algo { return &Algo{base: newBase(t), Instrs: instrs} }

// ----------------------------------------------------------------------------------------------
// Instructions
// ----------------------------------------------------------------------------------------------

// Instr is implemented by every statement variant. The unexported marker
// method keeps the set closed to this package, matching the teacher's
// ast.Statement/ast.Expression closed-interface idiom.
type Instr interface {
	Node
	instrNode()
}

type HaltInstr struct{ base }

func NewHaltInstr(t token.Token) *HaltInstr { return &HaltInstr{base: newBase(t)} }

func (*HaltInstr) instrNode() {}

type PrintInstr struct {
	base
	Value Output
}

func NewPrintInstr(t token.Token, value Output) *PrintInstr {
	return &PrintInstr{base: newBase(t), Value: value}
}

func (*PrintInstr) instrNode() {}

// CallRef is a use-site reference to a procedure or function name, resolved
// against the Procedure/Function scope (never the variable scopes).
type CallRef struct {
	base
	Name     string
	Args     []Atom // 0..3
	Resolved *Entry
}

func NewCallRef(t token.Token, name string, args []Atom) *CallRef {
	return &CallRef{base: newBase(t), Name: name, Args: args}
}

// CallInstr is a bare procedure-call statement: `p(args)`.
type CallInstr struct {
	base
	Call *CallRef
}

func NewCallInstr(t token.Token, call *CallRef) *CallInstr {
	return &CallInstr{base: newBase(t), Call: call}
}

func (*CallInstr) instrNode() {}

// AssignInstr is `target = term` or `target = name(args)`. Exactly one of
// RHSCall/RHSTerm is set.
type AssignInstr struct {
	base
	Target  *VarRef
	RHSCall *CallRef
	RHSTerm Term
}

func NewAssignInstr(t token.Token, target *VarRef, rhsCall *CallRef, rhsTerm Term) *AssignInstr {
	return &AssignInstr{base: newBase(t), Target: target, RHSCall: rhsCall, RHSTerm: rhsTerm}
}

func (*AssignInstr) instrNode() {}

type LoopWhileInstr struct {
	base
	Cond Term
	Body *Algo
}

func NewLoopWhileInstr(t token.Token, cond Term, body *Algo) *LoopWhileInstr {
	return &LoopWhileInstr{base: newBase(t), Cond: cond, Body: body}
}

func (*LoopWhileInstr) instrNode() {}

type LoopDoUntilInstr struct {
	base
	Body *Algo
	Cond Term
}

func NewLoopDoUntilInstr(t token.Token, body *Algo, cond Term) *LoopDoUntilInstr {
	return &LoopDoUntilInstr{base: newBase(t), Body: body, Cond: cond}
}

func (*LoopDoUntilInstr) instrNode() {}

type BranchIfInstr struct {
	base
	Cond Term
	Then *Algo
	Else *Algo // nil when no else branch
}

func NewBranchIfInstr(t token.Token, cond Term, then, els *Algo) *BranchIfInstr {
	return &BranchIfInstr{base: newBase(t), Cond: cond, Then: then, Else: els}
}

func (*BranchIfInstr) instrNode() {}

// ----------------------------------------------------------------------------------------------
// Terms
// ----------------------------------------------------------------------------------------------

// Term is implemented by the three syntactic shapes spec.md §3 allows: a
// bare atom, a parenthesized unary, or a parenthesized binary.
type Term interface {
	Node
	termNode()
}

type AtomTerm struct {
	base
	Value Atom
}

func NewAtomTerm(t token.Token, value Atom) *AtomTerm { return &AtomTerm{base: newBase(t), Value: value} }

func (*AtomTerm) termNode() {}

type UnaryTerm struct {
	base
	Op      token.Kind // neg | not
	Operand Term
}

func NewUnaryTerm(t token.Token, op token.Kind, operand Term) *UnaryTerm {
	return &UnaryTerm{base: newBase(t), Op: op, Operand: operand}
}

func (*UnaryTerm) termNode() {}

type BinaryTerm struct {
	base
	Op    token.Kind // plus | minus | mult | div | eq | > | or | and
	Left  Term
	Right Term
}

func NewBinaryTerm(t token.Token, op token.Kind, left, right Term) *BinaryTerm {
	return &BinaryTerm{base: newBase(t), Op: op, Left: left, Right: right}
}

func (*BinaryTerm) termNode() {}

// ----------------------------------------------------------------------------------------------
// Atoms
// ----------------------------------------------------------------------------------------------

// Atom is implemented by the leaves of a Term: a variable reference or a
// numeric literal.
type Atom interface {
	Node
	atomNode()
}

// VarRef is a use-site variable reference. Resolved is nil until the scope
// checker's use-resolution phase fills it in.
type VarRef struct {
	base
	Name     string
	Resolved *Entry
}

func NewVarRef(t token.Token) *VarRef { return &VarRef{base: newBase(t), Name: t.Lexeme} }

func (*VarRef) atomNode() {}

type NumberLit struct {
	base
	Value int
}

func NewNumberLit(t token.Token, value int) *NumberLit {
	return &NumberLit{base: newBase(t), Value: value}
}

func (*NumberLit) atomNode() {}

// ----------------------------------------------------------------------------------------------
// Output (the operand of `print`)
// ----------------------------------------------------------------------------------------------

type Output interface {
	Node
	outputNode()
}

type OutAtom struct {
	base
	Value Atom
}

func NewOutAtom(t token.Token, value Atom) *OutAtom { return &OutAtom{base: newBase(t), Value: value} }

func (*OutAtom) outputNode() {}

type OutString struct {
	base
	Value string
}

func NewOutString(t token.Token, value string) *OutString {
	return &OutString{base: newBase(t), Value: value}
}

func (*OutString) outputNode() {}
