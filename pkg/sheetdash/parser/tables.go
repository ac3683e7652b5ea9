package parser

import (
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// RangeDetection decides when the filled cells of an export count as a
// table worth reporting as an A1 range.
type RangeDetection struct {
	// MinDensity is the smallest share of filled cells inside the range.
	MinDensity float64
	// MinFilled is the smallest number of filled cells.
	MinFilled int
}

// DefaultRangeDetection accepts any range with three filled cells that is
// at least 4% filled.
func DefaultRangeDetection() RangeDetection {
	return RangeDetection{MinDensity: 0.04, MinFilled: 3}
}

// DetectDataRange returns the smallest 1-based range holding every filled
// cell of g. Cells holding only whitespace count as empty. ok is false when
// the range is too sparse for opts.
func DetectDataRange(g models.Grid, opts RangeDetection) (models.CellRange, bool) {
	area, found := filledBounds(g)
	if !found {
		return models.CellRange{}, false
	}

	filled := filledCells(g, area)
	size := (area.R2 - area.R1 + 1) * (area.C2 - area.C1 + 1)
	if filled < opts.MinFilled || float64(filled)/float64(size) < opts.MinDensity {
		return models.CellRange{}, false
	}
	return area, true
}

// filledBounds grows a range around every filled cell.
func filledBounds(g models.Grid) (models.CellRange, bool) {
	var area models.CellRange
	found := false
	for row := 1; row <= g.Rows(); row++ {
		for col := 1; col <= len(g[row-1]); col++ {
			if g.Trimmed(row, col) == "" {
				continue
			}
			if !found {
				area = models.CellRange{R1: row, C1: col, R2: row, C2: col}
				found = true
				continue
			}
			area.R1, area.R2 = min(area.R1, row), max(area.R2, row)
			area.C1, area.C2 = min(area.C1, col), max(area.C2, col)
		}
	}
	return area, found
}

// filledCells counts the filled cells inside area. Ragged rows simply have
// fewer cells.
func filledCells(g models.Grid, area models.CellRange) int {
	n := 0
	for row := area.R1; row <= area.R2; row++ {
		for col := area.C1; col <= area.C2; col++ {
			if g.Trimmed(row, col) != "" {
				n++
			}
		}
	}
	return n
}

// parseTable reads the table layout: title in A1, column headers in row 2,
// data from row 3. Blank rows are dropped; cells are kept verbatim.
func parseTable(l *Layout, g models.Grid) *models.ParsedTableResult {
	result := &models.ParsedTableResult{
		TableData: models.TableData{Columns: []string{}, Rows: [][]string{}},
	}
	if g.Rows() < l.MinRows {
		return result
	}

	result.HeaderTitle = l.title(g)
	if l.headers.R1 <= g.Rows() {
		result.TableData.Columns = append([]string{}, g[l.headers.R1-1]...)
	}
	for row := l.rows.R1; row <= g.Rows(); row++ {
		r := g[row-1]
		if r.IsBlank() {
			continue
		}
		result.TableData.Rows = append(result.TableData.Rows, append([]string{}, r...))
	}

	if area, ok := DetectDataRange(g, DefaultRangeDetection()); ok {
		result.Range = A1(area)
	}
	return result
}
