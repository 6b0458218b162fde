// ==============================================================================================
// FILE: types/types.go
// ==============================================================================================
// PACKAGE: types
// PURPOSE: Walks every Term/Instr reachable from a scope-checked program and
//          assigns it a Kind, validating assignments, conditions, print
//          operands, call arities, and function returns along the way.
//          Dispatch is a type switch over ast nodes, grounded in the
//          teacher's evaluator.Eval(node, env) shape, repurposed from
//          "produce a runtime value" to "produce a static type".
// ==============================================================================================

package types

import (
	"fmt"

	"splc/ast"
	"splc/diag"
)

// Kind is the closed set of static types SPL terms can carry.
type Kind string

const (
	Numeric Kind = "Numeric"
	Boolean Kind = "Boolean"
	String  Kind = "String"
	Void    Kind = "Void"
)

// Map is the auxiliary node_id -> Kind table the checker produces.
type Map map[ast.NodeID]Kind

// arity records how many parameters a declared proc/func expects, keyed by
// its declaration node id (the same id ast.Entry.DeclNodeID carries).
type arity map[ast.NodeID]int

// Check type-checks prog and returns the completed type map plus a Bag of
// every violation found. Like the scope checker, it never aborts early.
func Check(prog *ast.Program) (Map, *diag.Bag) {
	bag := diag.NewBag()
	m := Map{}

	procArity, funcArity := arity{}, arity{}
	for _, p := range prog.Procs {
		procArity[p.Name.ID()] = len(p.Params)
	}
	for _, f := range prog.Funcs {
		funcArity[f.Name.ID()] = len(f.Params)
	}

	c := &checker{m: m, bag: bag, procArity: procArity, funcArity: funcArity}

	for _, p := range prog.Procs {
		c.checkAlgo(p.Body.Algo)
	}
	for _, f := range prog.Funcs {
		c.checkAlgo(f.Body.Algo)
		retKind := c.checkAtom(f.Ret)
		if retKind != Numeric {
			c.errorAt(f.Ret, "function %q must return Numeric, got %s", f.Name.Name, retKind)
		}
	}
	if prog.Main != nil {
		c.checkAlgo(prog.Main.Algo)
	}

	return m, bag
}

type checker struct {
	m         Map
	bag       *diag.Bag
	procArity arity
	funcArity arity
}

func (c *checker) errorAt(n ast.Node, format string, args ...interface{}) {
	tok := n.Tok()
	c.bag.Add(&diag.Diagnostic{
		Kind:    diag.TypeError,
		Message: fmt.Sprintf(format, args...),
		NodeID:  n.ID(),
		Pos:     diag.Pos{Line: tok.Line, Col: tok.Col},
	})
}

func (c *checker) checkAlgo(a *ast.Algo) {
	for _, instr := range a.Instrs {
		c.checkInstr(instr)
	}
}

func (c *checker) checkInstr(i ast.Instr) {
	switch n := i.(type) {
	case *ast.HaltInstr:
	case *ast.PrintInstr:
		c.checkOutput(n.Value)
	case *ast.CallInstr:
		c.checkCall(n.Call, c.procArity)
	case *ast.AssignInstr:
		c.m[n.Target.ID()] = Numeric
		if n.RHSCall != nil {
			rk := c.checkCall(n.RHSCall, c.funcArity)
			if rk != Numeric {
				c.errorAt(n, "assignment to %q requires a Numeric result, got %s", n.Target.Name, rk)
			}
		} else {
			rk := c.checkTerm(n.RHSTerm)
			if rk != Numeric {
				c.errorAt(n, "assignment to %q requires Numeric, got %s", n.Target.Name, rk)
			}
		}
	case *ast.LoopWhileInstr:
		c.requireBoolean(n.Cond)
		c.checkAlgo(n.Body)
	case *ast.LoopDoUntilInstr:
		c.checkAlgo(n.Body)
		c.requireBoolean(n.Cond)
	case *ast.BranchIfInstr:
		c.requireBoolean(n.Cond)
		c.checkAlgo(n.Then)
		if n.Else != nil {
			c.checkAlgo(n.Else)
		}
	}
}

// requireBoolean enforces the resolved Open Question: a condition must be
// Boolean. A Numeric atom used directly as a condition is rejected rather
// than treated as a truthiness test — see SPEC_FULL.md §4.4.
func (c *checker) requireBoolean(cond ast.Term) {
	k := c.checkTerm(cond)
	if k != Boolean {
		c.errorAt(cond, "condition must be Boolean, got %s", k)
	}
}

func (c *checker) checkCall(call *ast.CallRef, expected arity) Kind {
	for _, a := range call.Args {
		if k := c.checkAtom(a); k != Numeric {
			c.errorAt(a, "call argument to %q must be Numeric, got %s", call.Name, k)
		}
	}
	if call.Resolved != nil {
		if want, ok := expected[call.Resolved.DeclNodeID]; ok && want != len(call.Args) {
			c.errorAt(call, "%q expects %d argument(s), got %d", call.Name, want, len(call.Args))
		}
	}
	c.m[call.ID()] = Numeric
	return Numeric
}

func (c *checker) checkTerm(t ast.Term) Kind {
	var k Kind
	switch n := t.(type) {
	case *ast.AtomTerm:
		k = c.checkAtom(n.Value)
	case *ast.UnaryTerm:
		operand := c.checkTerm(n.Operand)
		switch n.Op {
		case "neg":
			if operand != Numeric {
				c.errorAt(n, "'neg' requires Numeric, got %s", operand)
			}
			k = Numeric
		case "not":
			if operand != Boolean {
				c.errorAt(n, "'not' requires Boolean, got %s", operand)
			}
			k = Boolean
		}
	case *ast.BinaryTerm:
		left := c.checkTerm(n.Left)
		right := c.checkTerm(n.Right)
		switch n.Op {
		case "plus", "minus", "mult", "div":
			if left != Numeric || right != Numeric {
				c.errorAt(n, "'%s' requires Numeric operands, got %s and %s", n.Op, left, right)
			}
			k = Numeric
		case "eq", ">":
			if left != Numeric || right != Numeric {
				c.errorAt(n, "'%s' requires Numeric operands, got %s and %s", n.Op, left, right)
			}
			k = Boolean
		case "or", "and":
			if left != Boolean || right != Boolean {
				c.errorAt(n, "'%s' requires Boolean operands, got %s and %s", n.Op, left, right)
			}
			k = Boolean
		}
	}
	c.m[t.ID()] = k
	return k
}

func (c *checker) checkAtom(a ast.Atom) Kind {
	var k Kind
	switch a.(type) {
	case *ast.VarRef:
		k = Numeric
	case *ast.NumberLit:
		k = Numeric
	}
	c.m[a.ID()] = k
	return k
}

func (c *checker) checkOutput(o ast.Output) {
	switch n := o.(type) {
	case *ast.OutAtom:
		k := c.checkAtom(n.Value)
		if k != Numeric && k != String {
			c.errorAt(n, "print operand must be Numeric or String, got %s", k)
		}
	case *ast.OutString:
		c.m[n.ID()] = String
	}
}
