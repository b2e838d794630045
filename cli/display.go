package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/scanless/scanless/runtime/parser"
)

// printReport renders an expectation report as a table: each element the
// parser expected at the deepest position it reached, with the
// non-terminal call chain it failed under (innermost first).
func printReport(w io.Writer, r *parser.Report) {
	fmt.Fprintf(w, "Parsing got stuck at %s, expected:\n", r.Pos)
	if len(r.Entries) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Expected", "While parsing", "From"})
	table.SetAutoWrapText(false)
	for _, e := range r.Entries {
		names := make([]string, 0, len(e.Stack))
		from := ""
		for i, f := range e.Stack {
			names = append(names, f.Name)
			if i == 0 {
				from = f.Pos.String()
			}
		}
		table.Append([]string{e.Element, strings.Join(names, " < "), from})
	}
	table.Render()
}
