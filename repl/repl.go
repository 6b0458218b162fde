// ==============================================================================================
// FILE: repl/repl.go
// ==============================================================================================
// PACKAGE: repl
// PURPOSE: An interactive compile-and-inspect loop. SPL has no runtime to
//          evaluate, so this is not a read-eval-print loop over a live
//          environment the way the teacher's interpreter REPL is — it is a
//          read-compile-print loop: each line is treated as one SPL program
//          (or, for convenience, a bare ALGO fragment wrapped in a throwaway
//          main shell) and run through the full pipeline fresh every time.
//          No state persists between lines because SPL's compiler has none
//          to persist. Grounded in the teacher's repl.go banner/prompt/
//          bufio.Scanner structure, with evaluator.Eval replaced by
//          compile.Pipeline.
// ==============================================================================================

package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"splc/ast"
	"splc/compile"
	"splc/lexer"
	"splc/token"
)

const (
	PROMPT = "spl> "
	LOGO   = `
┏━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┓
┃  ____  ____  _                                     ┃
┃ / ___||  _ \| |                                    ┃
┃ \___ \| |_) | |                                    ┃
┃  ___) |  __/| |___                                 ┃
┃ |____/|_|   |_____|                                ┃
┃                                                    ┃
┃ Students' Programming Language — compile & inspect ┃
┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
`
)

const (
	Reset = "\033[0m"
	Red   = "\033[31m"
	Green = "\033[32m"
	Cyan  = "\033[36m"
	Gray  = "\033[37m"
	Bold  = "\033[1m"
)

// Start launches the loop. It listens to 'in', compiles each line, and
// writes the numbered BASIC (or the diagnostics) to 'out'. There is
// no env to persist across iterations — every line is compiled from a
// blank slate.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	debugMode := false

	fmt.Fprint(out, LOGO)
	printHelp(out)

	for {
		fmt.Fprint(out, Cyan+PROMPT+Reset)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch line {
			case ".exit":
				fmt.Fprintln(out, Green+"Goodbye!"+Reset)
				return
			case ".debug":
				debugMode = !debugMode
				status := "DISABLED"
				if debugMode {
					status = "ENABLED"
				}
				fmt.Fprintf(out, Gray+"Debug mode %s\n"+Reset, status)
			case ".help":
				printHelp(out)
			default:
				fmt.Fprintf(out, Red+"Unknown command: %s. Type .help for info.\n"+Reset, line)
			}
			continue
		}

		source := wrapFragment(line)

		if debugMode {
			printTokens(out, source)
		}

		compileLine(out, source, debugMode)
	}
}

// wrapFragment lets the user type a bare ALGO body ("x = 3 ; halt") instead
// of a full program; a line that already declares its own sections is used
// verbatim.
func wrapFragment(line string) string {
	if strings.HasPrefix(line, string(token.GLOB)) {
		return line
	}
	return fmt.Sprintf("glob { } proc { } func { } main { var { } %s }", line)
}

func compileLine(out io.Writer, source string, debug bool) {
	p := compile.Pipeline{Source: source}

	parsed, err := p.Parse()
	if err != nil {
		fmt.Fprintln(out, Red+Bold+err.Error()+Reset)
		return
	}
	if debug {
		printAST(out, parsed.Program)
	}

	basicText, diags, err := p.EmitBasic()
	if err != nil {
		fmt.Fprintln(out, Red+Bold+err.Error()+Reset)
		return
	}
	if len(diags) > 0 {
		fmt.Fprintln(out, Red+Bold+"Diagnostics:"+Reset)
		for _, d := range diags {
			line := "  " + d.String()
			if d.Pos.Line != 0 {
				line += fmt.Sprintf(" at %d:%d", d.Pos.Line, d.Pos.Col)
			}
			fmt.Fprintln(out, Red+line+Reset)
		}
		return
	}

	fmt.Fprintln(out, Green+basicText+Reset)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, Gray+"Commands:")
	fmt.Fprintln(out, "  .exit   Quit the session")
	fmt.Fprintln(out, "  .debug  Toggle token/AST dump before each compile")
	fmt.Fprintln(out, "  .help   Show this message"+Reset)
	fmt.Fprintln(out)
}

func printTokens(out io.Writer, source string) {
	fmt.Fprintln(out, Gray+"┌── [ TOKENS ] ──────────────────────────────────────────┐"+Reset)
	l := lexer.New(source)
	for {
		tok, err := l.NextToken()
		if err != nil {
			fmt.Fprintf(out, "│ %s\n", err.Error())
			break
		}
		fmt.Fprintf(out, "│ %-10s : %s\n", tok.Kind, tok.Lexeme)
		if tok.Kind == token.EOF {
			break
		}
	}
	fmt.Fprintln(out, Gray+"└────────────────────────────────────────────────────────┘"+Reset)
}

func printAST(out io.Writer, prog *ast.Program) {
	fmt.Fprintln(out, Gray+"┌── [ AST ] ─────────────────────────────────────────────┐"+Reset)
	fmt.Fprint(out, ast.Print(prog))
	fmt.Fprintln(out, Gray+"└────────────────────────────────────────────────────────┘"+Reset)
}
