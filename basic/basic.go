// ==============================================================================================
// FILE: basic/basic.go
// ==============================================================================================
// PACKAGE: basic
// PURPOSE: The second codegen pass — numbers every intermediate-listing
//          line ×10 starting at 10 (REM markers keep their own line, per
//          spec.md §8's "substitutes WH1, WB2, WE3 with the actual line
//          numbers of those REM lines"), builds a label → line-number map
//          as it goes, then rewrites every GOTO/IF…THEN target in a second
//          scan. Grounded in the same "assign offsets, then patch jump
//          targets" two-pass discipline codegen's label minting follows,
//          adapted from binary opcode offsets to decimal BASIC line numbers.
// ==============================================================================================

package basic

import (
	"strconv"
	"strings"

	"splc/codegen"
	"splc/diag"
)

// numbered is one line after pass one: its BASIC line number and statement
// text, before jump targets have been resolved.
type numbered struct {
	n    int
	stmt string
}

// Emit runs both passes over lines and returns the final BASIC text, one
// "<n> <statement>" line per entry, newline-terminated.
func Emit(lines []codegen.Line) (string, error) {
	numberedLines, labelMap, err := numberLines(lines)
	if err != nil {
		return "", err
	}
	if err := resolveLabels(numberedLines, labelMap); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, nl := range numberedLines {
		b.WriteString(strconv.Itoa(nl.n))
		b.WriteByte(' ')
		b.WriteString(nl.stmt)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// numberLines assigns every line — REM markers included — its own line
// number, recording each label's number as it is assigned.
func numberLines(lines []codegen.Line) ([]numbered, map[string]int, error) {
	labelMap := map[string]int{}
	var out []numbered
	lineNo := 10

	for _, l := range lines {
		text := l.Text()
		if l.Label != "" {
			if _, exists := labelMap[l.Label]; exists {
				return nil, nil, diag.Fatal(diag.EmitterError, 0, "", "duplicate label "+l.Label)
			}
			labelMap[l.Label] = lineNo
		}
		out = append(out, numbered{n: lineNo, stmt: text})
		lineNo += 10
	}
	return out, labelMap, nil
}

func resolveLabels(lines []numbered, labelMap map[string]int) error {
	for i, nl := range lines {
		resolved, changed, err := rewriteTarget(nl.stmt, labelMap)
		if err != nil {
			return err
		}
		if changed {
			lines[i].stmt = resolved
		}
	}
	return nil
}

// rewriteTarget substitutes a trailing GOTO/THEN label with its resolved
// line number. Every jump-bearing statement this generator emits is of the
// shape "GOTO <label>" or "IF ... THEN <label>", so a simple prefix/suffix
// scan is enough — no general tokenizer is needed for this fixed format.
func rewriteTarget(stmt string, labelMap map[string]int) (string, bool, error) {
	if strings.HasPrefix(stmt, "GOTO ") {
		label := stmt[len("GOTO "):]
		n, ok := labelMap[label]
		if !ok {
			return "", false, diag.Fatal(diag.EmitterError, 0, "", "unresolved label "+label)
		}
		return "GOTO " + strconv.Itoa(n), true, nil
	}
	if idx := strings.LastIndex(stmt, " THEN "); idx != -1 {
		label := stmt[idx+len(" THEN "):]
		n, ok := labelMap[label]
		if !ok {
			return "", false, diag.Fatal(diag.EmitterError, 0, "", "unresolved label "+label)
		}
		return stmt[:idx+len(" THEN ")] + strconv.Itoa(n), true, nil
	}
	return stmt, false, nil
}
