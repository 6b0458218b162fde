// ==============================================================================================
// FILE: ast/print.go
// PURPOSE: A human-debugging pretty-printer for the AST, used by --print-ast.
//          Plain text only — the CLI layer (cmd/splc) is responsible for any
//          terminal coloring, keeping this package free of presentation deps.
// ==============================================================================================

package ast

import (
	"fmt"
	"strings"
)

// Print renders prog as an indented tree, one node per line, each line
// prefixed with its node_id so output can be cross-referenced against
// diagnostics.
func Print(prog *Program) string {
	var b strings.Builder
	line(&b, 0, prog, "Program")
	for _, g := range prog.Globals {
		line(&b, 1, g, fmt.Sprintf("global %s", g.Name))
	}
	for _, p := range prog.Procs {
		printProcDef(&b, 1, p)
	}
	for _, f := range prog.Funcs {
		printFuncDef(&b, 1, f)
	}
	if prog.Main != nil {
		printMain(&b, 1, prog.Main)
	}
	return b.String()
}

func line(b *strings.Builder, depth int, n Node, label string) {
	fmt.Fprintf(b, "%s#%d %s\n", strings.Repeat("  ", depth), n.ID(), label)
}

func printProcDef(b *strings.Builder, depth int, p *ProcDef) {
	line(b, depth, p, fmt.Sprintf("ProcDef %s(%s)", p.Name.Name, joinIdents(p.Params)))
	printBody(b, depth+1, p.Body)
}

func printFuncDef(b *strings.Builder, depth int, f *FuncDef) {
	line(b, depth, f, fmt.Sprintf("FuncDef %s(%s)", f.Name.Name, joinIdents(f.Params)))
	printBody(b, depth+1, f.Body)
	line(b, depth+1, f.Ret, fmt.Sprintf("return %s", atomString(f.Ret)))
}

func printMain(b *strings.Builder, depth int, m *MainDef) {
	line(b, depth, m, fmt.Sprintf("Main var(%s)", joinIdents(m.Vars)))
	printAlgo(b, depth+1, m.Algo)
}

func printBody(b *strings.Builder, depth int, body *Body) {
	line(b, depth, body, fmt.Sprintf("Body local(%s)", joinIdents(body.Locals)))
	printAlgo(b, depth+1, body.Algo)
}

func printAlgo(b *strings.Builder, depth int, a *Algo) {
	line(b, depth, a, "Algo")
	for _, instr := range a.Instrs {
		printInstr(b, depth+1, instr)
	}
}

func printInstr(b *strings.Builder, depth int, i Instr) {
	switch n := i.(type) {
	case *HaltInstr:
		line(b, depth, n, "Halt")
	case *PrintInstr:
		line(b, depth, n, fmt.Sprintf("Print %s", outputString(n.Value)))
	case *CallInstr:
		line(b, depth, n, fmt.Sprintf("Call %s(%s)", n.Call.Name, joinAtoms(n.Call.Args)))
	case *AssignInstr:
		if n.RHSCall != nil {
			line(b, depth, n, fmt.Sprintf("Assign %s = %s(%s)", n.Target.Name, n.RHSCall.Name, joinAtoms(n.RHSCall.Args)))
		} else {
			line(b, depth, n, fmt.Sprintf("Assign %s = %s", n.Target.Name, termString(n.RHSTerm)))
		}
	case *LoopWhileInstr:
		line(b, depth, n, fmt.Sprintf("While %s", termString(n.Cond)))
		printAlgo(b, depth+1, n.Body)
	case *LoopDoUntilInstr:
		line(b, depth, n, "DoUntil")
		printAlgo(b, depth+1, n.Body)
		line(b, depth+1, n.Cond, fmt.Sprintf("until %s", termString(n.Cond)))
	case *BranchIfInstr:
		line(b, depth, n, fmt.Sprintf("If %s", termString(n.Cond)))
		printAlgo(b, depth+1, n.Then)
		if n.Else != nil {
			line(b, depth, n.Else, "Else")
			printAlgo(b, depth+1, n.Else)
		}
	}
}

func termString(t Term) string {
	switch n := t.(type) {
	case *AtomTerm:
		return atomString(n.Value)
	case *UnaryTerm:
		return fmt.Sprintf("(%s %s)", n.Op, termString(n.Operand))
	case *BinaryTerm:
		return fmt.Sprintf("(%s %s %s)", termString(n.Left), n.Op, termString(n.Right))
	}
	return "?"
}

func atomString(a Atom) string {
	switch n := a.(type) {
	case *VarRef:
		return n.Name
	case *NumberLit:
		return fmt.Sprintf("%d", n.Value)
	}
	return "?"
}

func outputString(o Output) string {
	switch n := o.(type) {
	case *OutAtom:
		return atomString(n.Value)
	case *OutString:
		return fmt.Sprintf("%q", n.Value)
	}
	return "?"
}

func joinIdents(idents []*Ident) string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return strings.Join(names, ", ")
}

func joinAtoms(atoms []Atom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = atomString(a)
	}
	return strings.Join(parts, ", ")
}
