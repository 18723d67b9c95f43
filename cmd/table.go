package cmd

import "github.com/pterm/pterm"

// PrintTableNoPad renders rows as a left-aligned table.
func PrintTableNoPad(rows pterm.TableData, hasHeader bool) {
	_ = pterm.DefaultTable.
		WithHasHeader(hasHeader).
		WithLeftAlignment().
		WithData(rows).
		Render()
}
