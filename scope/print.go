// ==============================================================================================
// FILE: scope/print.go
// PURPOSE: A human-debugging renderer for the scope tree, used by
//          --dump-scopes. Mirrors ast.Print's "plain text, presentation-free"
//          stance — cmd/splc owns any terminal coloring.
// ==============================================================================================

package scope

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders every scope in t in creation order, each with its entries
// sorted by name for deterministic output across runs.
func Dump(t *SymbolTable) string {
	var b strings.Builder
	for _, s := range t.scopes {
		fmt.Fprintf(&b, "%s (id %d)\n", s.Path(), s.ID)
		names := make([]string, 0, len(s.Table))
		for name := range s.Table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e := s.Table[name]
			fmt.Fprintf(&b, "  %s: %s (node #%d)\n", name, e.Kind, e.DeclNodeID)
		}
	}
	return b.String()
}
