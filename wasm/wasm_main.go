// ==============================================================================================
// FILE: wasm/wasm_main.go
// BUILD: GOOS=js GOARCH=wasm go build -o main.wasm wasm/wasm_main.go
// ==============================================================================================
// PURPOSE: A browser entry point exposing the compiler as compileSPL(code),
//          adapted from the teacher's runEloquence(code) interpreter bridge.
//          There is no runtime to interpret and so no show()/stdout buffer
//          to capture — compileSPL runs the pure Compile pipeline and
//          returns the numbered BASIC text plus any diagnostics.
// ==============================================================================================
package main

import (
	"fmt"
	"syscall/js"

	"splc/compile"
)

func main() {
	c := make(chan struct{}, 0)

	js.Global().Set("compileSPL", js.FuncOf(compileSPL))

	fmt.Println("SPL compiler WASM bridge loaded.")
	<-c
}

// compileSPL is the bridge between JS and Go. It takes SPL source as its
// only argument and returns {basic: string, diagnostics: []string}.
func compileSPL(this js.Value, p []js.Value) interface{} {
	if len(p) == 0 {
		return result("", []string{"no source provided"})
	}
	code := p[0].String()

	pipeline := compile.Pipeline{Source: code}
	basicText, diags, err := pipeline.EmitBasic()
	if err != nil {
		return result("", []string{err.Error()})
	}
	if len(diags) > 0 {
		msgs := make([]string, len(diags))
		for i, d := range diags {
			msgs[i] = d.String()
		}
		return result("", msgs)
	}
	return result(basicText, nil)
}

func result(basicText string, diagnostics []string) map[string]interface{} {
	diagVals := make([]interface{}, len(diagnostics))
	for i, d := range diagnostics {
		diagVals[i] = d
	}
	return map[string]interface{}{
		"basic":       basicText,
		"diagnostics": diagVals,
	}
}
