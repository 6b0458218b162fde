// ==============================================================================================
// FILE: diag/diag.go
// ==============================================================================================
// PACKAGE: diag
// PURPOSE: The diagnostic value type shared by every static pass, plus two
//          reporting shapes: a single fatal Diagnostic for codegen/emitter
//          failures, and a Bag of many non-fatal ones for the scope and type
//          checkers, which always run to completion. Lexical and syntax
//          failures use their own positioned error types (lexer.Error,
//          parser.SyntaxError) rather than a Diagnostic.
// ==============================================================================================

package diag

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"splc/ast"
)

// Kind is the closed set of diagnostic categories a compilation can report.
type Kind string

const (
	DuplicateName      Kind = "DuplicateName"
	CrossCategoryClash Kind = "CrossCategoryClash"
	ParamShadowed      Kind = "ParamShadowed"
	UndeclaredVariable Kind = "UndeclaredVariable"
	TypeError          Kind = "TypeError"
	SyntaxError        Kind = "SyntaxError"
	LexicalError       Kind = "LexicalError"
	EmitterError       Kind = "EmitterError"
	RecursiveInline    Kind = "RecursiveInline"
)

// Pos is a 1-based source position, carried alongside NodeID so a
// diagnostic remains readable even before a caller has bothered to look the
// node up in an ast.Index.
type Pos struct {
	Line int
	Col  int
}

// Diagnostic is the value every static pass produces. It implements error
// so a single Diagnostic can be returned directly from a fatal pass.
type Diagnostic struct {
	Kind      Kind
	Message   string
	NodeID    ast.NodeID
	ScopePath string
	Pos       Pos
}

// String renders the exact wire format: "<Kind>: <message> (node #<id>[, scope <path>])".
func (d *Diagnostic) String() string {
	if d.ScopePath != "" {
		return fmt.Sprintf("%s: %s (node #%d, scope %s)", d.Kind, d.Message, d.NodeID, d.ScopePath)
	}
	return fmt.Sprintf("%s: %s (node #%d)", d.Kind, d.Message, d.NodeID)
}

func (d *Diagnostic) Error() string { return d.String() }

// Fatal builds a single-shot fatal Diagnostic for the codegen/emitter band,
// which aborts compilation at the point of detection rather than
// accumulating. The returned error is the *Diagnostic itself, not a wrapper.
func Fatal(kind Kind, nodeID ast.NodeID, scopePath, message string) error {
	return &Diagnostic{Kind: kind, Message: message, NodeID: nodeID, ScopePath: scopePath}
}

// Bag accumulates diagnostics across a full collecting pass (scope checking,
// type checking). It never aborts the pass that feeds it; callers inspect
// Empty()/Diagnostics() once the pass has finished walking everything.
type Bag struct {
	merr  *multierror.Error
	items []*Diagnostic
}

// NewBag returns an empty diagnostic accumulator.
func NewBag() *Bag { return &Bag{} }

// Add records one diagnostic. It never returns an error and never panics —
// a collecting pass always runs to completion regardless of how many
// diagnostics it reports.
func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
	b.merr = multierror.Append(b.merr, d)
}

func (b *Bag) Empty() bool { return len(b.items) == 0 }

// Diagnostics returns the accumulated diagnostics in the order they were
// added, matching spec's "diagnostics are appended in the order the checker
// encounters them" ordering guarantee.
func (b *Bag) Diagnostics() []*Diagnostic { return b.items }

// Err returns the accumulated diagnostics as a single error via
// go-multierror, or nil if the bag is empty.
func (b *Bag) Err() error {
	if b.merr == nil {
		return nil
	}
	return b.merr.ErrorOrNil()
}
