// Package models defines data structures for parsed spreadsheet exports.
package models

import "strings"

// RawRow is one spreadsheet row as delivered by the export, cells in column order.
type RawRow []string

// Grid is a whole export: every row is data, there is no header inference.
type Grid []RawRow

// Cell returns the cell at the 1-based row and column, or "" when the grid
// does not reach that far.
func (g Grid) Cell(row, col int) string {
	if row < 1 || row > len(g) {
		return ""
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Trimmed returns Cell with surrounding whitespace removed.
func (g Grid) Trimmed(row, col int) string {
	return strings.TrimSpace(g.Cell(row, col))
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// IsBlank reports whether every cell of the row is empty after trimming.
func (r RawRow) IsBlank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
