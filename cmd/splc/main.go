// ==============================================================================================
// FILE: cmd/splc/main.go
// ==============================================================================================
// PACKAGE: main (cmd/splc)
// PURPOSE: The CLI driver. A thin adapter over compile.Pipeline: every flag
//          below runs one more pipeline stage and prints its diagnostics,
//          mirroring the teacher's main.go two-mode dispatch (file arg vs.
//          interactive) but upgraded from bare os.Args parsing to cobra/
//          pflag, since the flag surface here is considerably larger than
//          the teacher's "script path or nothing".
// ==============================================================================================

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"splc/ast"
	"splc/compile"
	"splc/diag"
	"splc/repl"
	"splc/scope"
)

var (
	flagPrintAST    bool
	flagCheckScopes bool
	flagDumpScopes  bool
	flagTypeCheck   bool
	flagCodegen     bool
	flagEmitBasic   bool
	flagOut         string
	flagNoColor     bool
	flagREPL        bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "splc [source.spl]",
		Short:         "Compile SPL programs to numbered BASIC",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runSplc,
	}

	cmd.Flags().BoolVar(&flagPrintAST, "print-ast", false, "pretty-print the AST to stdout")
	cmd.Flags().BoolVar(&flagCheckScopes, "check-scopes", false, "run scope analysis")
	cmd.Flags().BoolVar(&flagDumpScopes, "dump-scopes", false, "print the full scope tree with entries")
	cmd.Flags().BoolVar(&flagTypeCheck, "type-check", false, "run the type checker")
	cmd.Flags().BoolVar(&flagCodegen, "codegen", false, "write the intermediate listing to <input-stem>.txt")
	cmd.Flags().BoolVar(&flagEmitBasic, "emit-basic", false, "run the full pipeline and write numbered BASIC to <input-stem>.bas")
	cmd.Flags().StringVar(&flagOut, "out", "", "override the output file for --codegen/--emit-basic")
	cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output even on a terminal")
	cmd.Flags().BoolVar(&flagREPL, "repl", false, "launch an interactive compile-and-inspect session")

	return cmd
}

func runSplc(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		color.NoColor = true
	}

	if flagREPL {
		if len(args) != 0 {
			return fmt.Errorf("--repl takes no positional source path")
		}
		repl.Start(os.Stdin, os.Stdout)
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one source path (or --repl)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p := compile.Pipeline{Source: string(data)}

	failed := false
	report := func(diags []*diag.Diagnostic) {
		if len(diags) > 0 {
			failed = true
		}
	}

	parsed, err := p.Parse()
	if err != nil {
		printFatal(err)
		return err
	}

	if flagPrintAST {
		printAST(parsed.Program)
	}

	var table *scope.SymbolTable
	if flagCheckScopes || flagDumpScopes || flagTypeCheck || flagCodegen || flagEmitBasic {
		var scopeDiags []*diag.Diagnostic
		table, scopeDiags, err = p.CheckScopes()
		if err != nil {
			printFatal(err)
			return err
		}
		if flagCheckScopes {
			printNamingResult(scopeDiags)
		}
		report(scopeDiags)
		if len(scopeDiags) > 0 && (flagTypeCheck || flagCodegen || flagEmitBasic) {
			if !flagCheckScopes {
				printDiagnostics(scopeDiags)
			}
			return fmt.Errorf("naming errors present, later stages skipped")
		}
	}

	if flagDumpScopes && table != nil {
		fmt.Println(scope.Dump(table))
	}

	if flagTypeCheck || flagCodegen || flagEmitBasic {
		_, typeDiags, err := p.CheckTypes()
		if err != nil {
			printFatal(err)
			return err
		}
		if flagTypeCheck {
			printTypeResult(typeDiags)
		}
		report(typeDiags)
		if len(typeDiags) > 0 && (flagCodegen || flagEmitBasic) {
			if !flagTypeCheck {
				printDiagnostics(typeDiags)
			}
			return fmt.Errorf("type errors present, later stages skipped")
		}
	}

	stem := strings.TrimSuffix(args[0], filepath.Ext(args[0]))

	if flagCodegen {
		lines, _, err := p.Generate()
		if err != nil {
			printFatal(err)
			return err
		}
		out := flagOut
		if out == "" {
			out = stem + ".txt"
		}
		var b strings.Builder
		for _, l := range lines {
			b.WriteString(l.Text())
			b.WriteByte('\n')
		}
		if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
			return err
		}
	}

	if flagEmitBasic {
		basicText, _, err := p.EmitBasic()
		if err != nil {
			printFatal(err)
			return err
		}
		out := flagOut
		if out == "" {
			out = stem + ".bas"
		}
		if err := os.WriteFile(out, []byte(basicText), 0o644); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("compilation reported diagnostics")
	}
	return nil
}

func printAST(prog *ast.Program) {
	header := color.New(color.Bold, color.FgCyan)
	header.Println("AST")
	fmt.Print(ast.Print(prog))
}

func printNamingResult(diags []*diag.Diagnostic) {
	if len(diags) == 0 {
		color.New(color.FgGreen).Println("Variable Naming and Function Naming accepted")
		return
	}
	color.New(color.FgRed, color.Bold).Println("Naming error(s):")
	printDiagnostics(diags)
}

func printTypeResult(diags []*diag.Diagnostic) {
	if len(diags) == 0 {
		color.New(color.FgGreen).Println("Type checking passed")
		return
	}
	color.New(color.FgRed, color.Bold).Println("Type error(s):")
	printDiagnostics(diags)
}

func printDiagnostics(diags []*diag.Diagnostic) {
	kindColor := color.New(color.FgRed)
	locColor := color.New(color.Faint)
	for _, d := range diags {
		kindColor.Printf("%s: ", d.Kind)
		fmt.Print(d.Message)
		if d.ScopePath != "" {
			locColor.Printf(" (node #%d, scope %s)", d.NodeID, d.ScopePath)
		} else {
			locColor.Printf(" (node #%d)", d.NodeID)
		}
		if d.Pos.Line != 0 {
			locColor.Printf(" at %d:%d", d.Pos.Line, d.Pos.Col)
		}
		fmt.Println()
	}
}

func printFatal(err error) {
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err.Error())
}
