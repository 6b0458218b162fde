// ==============================================================================================
// FILE: cmd/splc/main_test.go
// PURPOSE: End-to-end CLI tests over the literal scenarios from spec.md §8,
//          grounded in the teacher's tests/system_test.go's "write a source
//          file, run the pipeline, assert on output" style but through the
//          actual CLI entry point rather than calling packages directly.
// ==============================================================================================

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	flagPrintAST = false
	flagCheckScopes = false
	flagDumpScopes = false
	flagTypeCheck = false
	flagCodegen = false
	flagEmitBasic = false
	flagOut = ""
	flagNoColor = true
	flagREPL = false
}

func writeSource(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.spl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCLI_EmitBasic_HelloHalt(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeSource(t, dir, `glob { } proc { } func { } main { var { } halt }`)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--emit-basic", path})
	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(filepath.Join(dir, "prog.bas"))
	require.NoError(t, err)
	assert.Equal(t, "10 STOP\n", string(out))
}

func TestCLI_EmitBasic_RespectsOutFlag(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeSource(t, dir, `glob { } proc { } func { } main { var { } halt }`)
	outPath := filepath.Join(dir, "custom.bas")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--emit-basic", "--out", outPath, path})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(outPath)
	require.NoError(t, err)
}

func TestCLI_CheckScopes_ReportsUndeclaredVariable(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeSource(t, dir, `glob { } proc { } func { } main { var { } print nope ; halt }`)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--check-scopes", path})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestCLI_Codegen_WritesIntermediateListing(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeSource(t, dir, `glob { } proc { } func { } main { var { x } x = 3 ; halt }`)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--codegen", path})
	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(filepath.Join(dir, "prog.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x = 3\nSTOP\n", string(out))
}

func TestCLI_SyntaxErrorFailsBeforeAnyStage(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeSource(t, dir, `glob { proc { } func { } main { var { } halt }`)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--emit-basic", path})
	require.Error(t, cmd.Execute())
}

func TestCLI_REPLRejectsPositionalArg(t *testing.T) {
	resetFlags()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--repl", "somefile.spl"})
	require.Error(t, cmd.Execute())
}
