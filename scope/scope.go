// ==============================================================================================
// FILE: scope/scope.go
// ==============================================================================================
// PACKAGE: scope
// PURPOSE: Builds the five-way scope tree (Everywhere → Global | Procedure |
//          Function | Main, plus a per-definition Local under Global) and
//          resolves every variable/call use against it. Parent-chain lookup
//          is grounded in the teacher's object.Environment{store, outer}
//          idiom, generalized from one linear chain to this fixed tree shape.
// ==============================================================================================

package scope

import (
	"fmt"

	"splc/ast"
	"splc/diag"
)

// Kind classifies a node in the scope tree.
type Kind string

const (
	Everywhere Kind = "Everywhere"
	Global     Kind = "Global"
	Procedure  Kind = "Procedure"
	Function   Kind = "Function"
	Main       Kind = "Main"
	Local      Kind = "Local"
)

// Scope is one node of the tree. ParentID is 0 for the root (Everywhere).
type Scope struct {
	ID       int
	Kind     Kind
	ParentID int
	Name     string
	Table    map[string]*ast.Entry
}

func (s *Scope) Path() string {
	if s.Kind == Local {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
	}
	return string(s.Kind)
}

// SymbolTable is the full scope tree plus the per-definition Local scopes, keyed
// for both dump-scopes rendering and use resolution.
type SymbolTable struct {
	scopes     []*Scope
	everywhere *Scope
	global     *Scope
	procedure  *Scope
	function   *Scope
	main       *Scope
	localByDef map[ast.NodeID]*Scope // ProcDef/FuncDef node id -> its Local scope
}

func (t *SymbolTable) Scopes() []*Scope { return t.scopes }
func (t *SymbolTable) Global() *Scope   { return t.global }
func (t *SymbolTable) Main() *Scope     { return t.main }

// LocalFor returns the Local scope created for a ProcDef or FuncDef, or nil.
func (t *SymbolTable) LocalFor(defID ast.NodeID) *Scope { return t.localByDef[defID] }

func (t *SymbolTable) addScope(kind Kind, parentID int, name string) *Scope {
	s := &Scope{ID: len(t.scopes) + 1, Kind: kind, ParentID: parentID, Name: name, Table: map[string]*ast.Entry{}}
	t.scopes = append(t.scopes, s)
	return s
}

// Check runs all three construction phases plus use resolution over prog,
// returning the built table and a Bag of every diagnostic encountered. It
// never aborts early: a malformed program still yields a complete (if
// partially wrong) table, per spec's "always produces a complete scope tree"
// contract.
func Check(prog *ast.Program) (*SymbolTable, *diag.Bag) {
	bag := diag.NewBag()
	t := &SymbolTable{localByDef: map[ast.NodeID]*Scope{}}

	t.everywhere = t.addScope(Everywhere, 0, "Everywhere")
	t.global = t.addScope(Global, t.everywhere.ID, "Global")
	t.procedure = t.addScope(Procedure, t.everywhere.ID, "Procedure")
	t.function = t.addScope(Function, t.everywhere.ID, "Function")
	t.main = t.addScope(Main, t.everywhere.ID, "Main")

	declareGlobals(t, prog, bag)
	declareProcsAndFuncs(t, prog, bag)
	declareMainVars(t, prog, bag)
	checkCrossCategory(t, bag)

	resolveUses(t, prog, bag)

	return t, bag
}

// insert adds name into scope's table as kind, emitting DuplicateName if the
// name is already present there. It reports whether the insertion happened.
// declNode is the Ident the declaration was built from, carrying both the
// node id and the token position recovered for the diagnostic.
func insert(scope *Scope, name string, kind ast.EntryKind, declNode *ast.Ident, bag *diag.Bag) bool {
	if prior, ok := scope.Table[name]; ok {
		bag.Add(&diag.Diagnostic{
			Kind:      diag.DuplicateName,
			Message:   fmt.Sprintf("%q already declared as %s (node #%d)", name, prior.Kind, prior.DeclNodeID),
			NodeID:    declNode.ID(),
			ScopePath: scope.Path(),
			Pos:       diag.Pos{Line: declNode.Tok().Line, Col: declNode.Tok().Col},
		})
		return false
	}
	scope.Table[name] = &ast.Entry{Name: name, Kind: kind, ScopeID: scope.ID, DeclNodeID: declNode.ID()}
	return true
}

func declareGlobals(t *SymbolTable, prog *ast.Program, bag *diag.Bag) {
	for _, g := range prog.Globals {
		insert(t.global, g.Name, ast.EntryVar, g, bag)
	}
}

func declareMainVars(t *SymbolTable, prog *ast.Program, bag *diag.Bag) {
	if prog.Main == nil {
		return
	}
	for _, v := range prog.Main.Vars {
		insert(t.main, v.Name, ast.EntryVar, v, bag)
	}
}

func declareProcsAndFuncs(t *SymbolTable, prog *ast.Program, bag *diag.Bag) {
	for _, p := range prog.Procs {
		insert(t.procedure, p.Name.Name, ast.EntryProc, p.Name, bag)
		local := t.addScope(Local, t.global.ID, p.Name.Name)
		t.localByDef[p.ID()] = local
		declareParamsAndLocals(local, p.Params, p.Body.Locals, bag)
	}
	for _, f := range prog.Funcs {
		insert(t.function, f.Name.Name, ast.EntryFunc, f.Name, bag)
		local := t.addScope(Local, t.global.ID, f.Name.Name)
		t.localByDef[f.ID()] = local
		declareParamsAndLocals(local, f.Params, f.Body.Locals, bag)
	}
}

// declareParamsAndLocals inserts params first, then locals. A local that
// repeats a param name in the same definition is ParamShadowed, distinct
// from a plain DuplicateName among entries of the same category.
func declareParamsAndLocals(local *Scope, params, locals []*ast.Ident, bag *diag.Bag) {
	for _, p := range params {
		insert(local, p.Name, ast.EntryParam, p, bag)
	}
	for _, l := range locals {
		if prior, ok := local.Table[l.Name]; ok && prior.Kind == ast.EntryParam {
			bag.Add(&diag.Diagnostic{
				Kind:      diag.ParamShadowed,
				Message:   fmt.Sprintf("local %q shadows parameter declared at node #%d", l.Name, prior.DeclNodeID),
				NodeID:    l.ID(),
				ScopePath: local.Path(),
				Pos:       diag.Pos{Line: l.Tok().Line, Col: l.Tok().Col},
			})
			continue
		}
		insert(local, l.Name, ast.EntryVar, l, bag)
	}
}

// checkCrossCategory enforces: no variable name (global or main) may equal
// a procedure or function name; no procedure name may equal a function name.
func checkCrossCategory(t *SymbolTable, bag *diag.Bag) {
	clash := func(name string, a, b *ast.Entry) {
		bag.Add(&diag.Diagnostic{
			Kind:      diag.CrossCategoryClash,
			Message:   fmt.Sprintf("%q declared as both %s (node #%d) and %s (node #%d)", name, a.Kind, a.DeclNodeID, b.Kind, b.DeclNodeID),
			NodeID:    b.DeclNodeID,
			ScopePath: string(Everywhere),
		})
	}

	for name, pe := range t.procedure.Table {
		if fe, ok := t.function.Table[name]; ok {
			clash(name, pe, fe)
		}
	}
	for name, entry := range t.global.Table {
		if pe, ok := t.procedure.Table[name]; ok {
			clash(name, entry, pe)
		}
		if fe, ok := t.function.Table[name]; ok {
			clash(name, entry, fe)
		}
	}
	for name, entry := range t.main.Table {
		if pe, ok := t.procedure.Table[name]; ok {
			clash(name, entry, pe)
		}
		if fe, ok := t.function.Table[name]; ok {
			clash(name, entry, fe)
		}
	}
}

// resolveUses walks every Algo and fills in VarRef.Resolved / CallRef.Resolved.
// A bare call statement always targets a procedure and a call on the RHS of
// an assignment always targets a function — that split is fixed by §4.5's
// translation table, not by which body the call appears in, so every walk
// is handed both t.procedure and t.function regardless of context.
func resolveUses(t *SymbolTable, prog *ast.Program, bag *diag.Bag) {
	for _, p := range prog.Procs {
		local := t.localByDef[p.ID()]
		resolveAlgo(p.Body.Algo, local, t.global, t.procedure, t.function, bag)
	}
	for _, f := range prog.Funcs {
		local := t.localByDef[f.ID()]
		resolveAlgo(f.Body.Algo, local, t.global, t.procedure, t.function, bag)
		resolveAtom(f.Ret, local, t.global, bag)
	}
	if prog.Main != nil {
		resolveAlgo(prog.Main.Algo, t.main, t.global, t.procedure, t.function, bag)
	}
}

// resolveVar looks name up in local first, then global — the fixed
// "param → local → global" / "main → global" order spec requires. This is
// an explicit two-scope chain rather than a climb through ParentID, because
// Main's structural parent is Everywhere, not Global.
func resolveVar(local, global *Scope, name string) *ast.Entry {
	if e, ok := local.Table[name]; ok {
		return e
	}
	if local != global {
		if e, ok := global.Table[name]; ok {
			return e
		}
	}
	return nil
}

func resolveAtom(a ast.Atom, local, global *Scope, bag *diag.Bag) {
	v, ok := a.(*ast.VarRef)
	if !ok {
		return
	}
	entry := resolveVar(local, global, v.Name)
	if entry == nil {
		bag.Add(&diag.Diagnostic{
			Kind:      diag.UndeclaredVariable,
			Message:   fmt.Sprintf("%q is not declared", v.Name),
			NodeID:    v.ID(),
			ScopePath: local.Path(),
			Pos:       diag.Pos{Line: v.Tok().Line, Col: v.Tok().Col},
		})
		return
	}
	v.Resolved = entry
}

// resolveCall resolves a call target against callScope (Procedure for a bare
// call statement, Function for a function-call assignment), per §4.5's fixed
// translation rule that only a procedure is ever called as a statement and
// only a function ever appears on the right of an assignment.
func resolveCall(c *ast.CallRef, local, global, callScope *Scope, bag *diag.Bag) {
	entry, ok := callScope.Table[c.Name]
	if !ok {
		bag.Add(&diag.Diagnostic{
			Kind:      diag.UndeclaredVariable,
			Message:   fmt.Sprintf("%q is not a declared %s", c.Name, callScope.Kind),
			NodeID:    c.ID(),
			ScopePath: local.Path(),
			Pos:       diag.Pos{Line: c.Tok().Line, Col: c.Tok().Col},
		})
	} else {
		c.Resolved = entry
	}
	for _, a := range c.Args {
		resolveAtom(a, local, global, bag)
	}
}

func resolveAlgo(a *ast.Algo, local, global, procScope, funcScope *Scope, bag *diag.Bag) {
	for _, instr := range a.Instrs {
		resolveInstr(instr, local, global, procScope, funcScope, bag)
	}
}

func resolveInstr(i ast.Instr, local, global, procScope, funcScope *Scope, bag *diag.Bag) {
	switch n := i.(type) {
	case *ast.HaltInstr:
	case *ast.PrintInstr:
		resolveOutput(n.Value, local, global, bag)
	case *ast.CallInstr:
		resolveCall(n.Call, local, global, procScope, bag)
	case *ast.AssignInstr:
		resolveAtom(n.Target, local, global, bag)
		if n.RHSCall != nil {
			resolveCall(n.RHSCall, local, global, funcScope, bag)
		} else {
			resolveTerm(n.RHSTerm, local, global, bag)
		}
	case *ast.LoopWhileInstr:
		resolveTerm(n.Cond, local, global, bag)
		resolveAlgo(n.Body, local, global, procScope, funcScope, bag)
	case *ast.LoopDoUntilInstr:
		resolveAlgo(n.Body, local, global, procScope, funcScope, bag)
		resolveTerm(n.Cond, local, global, bag)
	case *ast.BranchIfInstr:
		resolveTerm(n.Cond, local, global, bag)
		resolveAlgo(n.Then, local, global, procScope, funcScope, bag)
		if n.Else != nil {
			resolveAlgo(n.Else, local, global, procScope, funcScope, bag)
		}
	}
}

func resolveTerm(term ast.Term, local, global *Scope, bag *diag.Bag) {
	switch n := term.(type) {
	case *ast.AtomTerm:
		resolveAtom(n.Value, local, global, bag)
	case *ast.UnaryTerm:
		resolveTerm(n.Operand, local, global, bag)
	case *ast.BinaryTerm:
		resolveTerm(n.Left, local, global, bag)
		resolveTerm(n.Right, local, global, bag)
	}
}

func resolveOutput(o ast.Output, local, global *Scope, bag *diag.Bag) {
	switch n := o.(type) {
	case *ast.OutAtom:
		resolveAtom(n.Value, local, global, bag)
	case *ast.OutString:
	}
}
