package models

// Result kinds reported by Result.ResultKind.
const (
	ResultSheet   = "sheet"
	ResultTable   = "table"
	ResultMap     = "map"
	ResultHeatmap = "heatmap"
)

// Result is implemented by every parsed shape.
type Result interface {
	// ResultKind names the shape (sheet, table, map, heatmap).
	ResultKind() string
	// IsEmpty reports whether the shape carries no data.
	IsEmpty() bool
}

// ParsedSheetResult represents chart data parsed from one export.
type ParsedSheetResult struct {
	// HeaderTitle is the card title read from the layout's title cell.
	HeaderTitle string `json:"headerTitle"`
	// ChartData is the parsed chart.
	ChartData ChartData `json:"chartData"`
	// Subtitle is an optional secondary title.
	Subtitle string `json:"subtitle,omitempty"`
	// Total is an optional headline figure.
	Total *float64 `json:"total,omitempty"`
	// CurrentPeriodCount is the count for the current period, nil when absent.
	CurrentPeriodCount *float64 `json:"currentPeriodCount,omitempty"`
	// PriorPeriodCount is the count for the prior period, nil when absent.
	PriorPeriodCount *float64 `json:"priorPeriodCount,omitempty"`
}

// ResultKind implements Result.
func (r *ParsedSheetResult) ResultKind() string { return ResultSheet }

// IsEmpty implements Result.
func (r *ParsedSheetResult) IsEmpty() bool { return r.ChartData.IsEmpty() }

// Clone returns a deep copy of the result.
func (r *ParsedSheetResult) Clone() *ParsedSheetResult {
	return &ParsedSheetResult{
		HeaderTitle:        r.HeaderTitle,
		ChartData:          r.ChartData.Clone(),
		Subtitle:           r.Subtitle,
		Total:              copyFloat(r.Total),
		CurrentPeriodCount: copyFloat(r.CurrentPeriodCount),
		PriorPeriodCount:   copyFloat(r.PriorPeriodCount),
	}
}

// TableData holds the columns and raw rows of a table export.
type TableData struct {
	// Columns are the column headers.
	Columns []string `json:"columns"`
	// Rows are the data rows, cells as strings.
	Rows [][]string `json:"rows"`
}

// ParsedTableResult represents a table parsed from one export.
type ParsedTableResult struct {
	// HeaderTitle is the table title.
	HeaderTitle string `json:"headerTitle"`
	// TableData is the table content.
	TableData TableData `json:"tableData"`
	// Range is the A1 range of the non-empty data region (e.g. "A1:D10").
	Range string `json:"range,omitempty"`
}

// ResultKind implements Result.
func (r *ParsedTableResult) ResultKind() string { return ResultTable }

// IsEmpty implements Result.
func (r *ParsedTableResult) IsEmpty() bool { return len(r.TableData.Rows) == 0 }

// MapRow is one region value of a map export.
type MapRow struct {
	// RegionCode identifies the region (e.g. a state code).
	RegionCode string `json:"state"`
	// Value is the raw cell text.
	Value string `json:"value"`
	// Number is Value parsed permissively, nil when not numeric.
	Number *float64 `json:"number,omitempty"`
}

// ParsedMapResult represents region values parsed from one export.
type ParsedMapResult struct {
	// Rows are unique by RegionCode.
	Rows []MapRow `json:"rows"`
	// HeaderTitle is omitted when the title cell is blank.
	HeaderTitle string `json:"headerTitle,omitempty"`
}

// ResultKind implements Result.
func (r *ParsedMapResult) ResultKind() string { return ResultMap }

// IsEmpty implements Result.
func (r *ParsedMapResult) IsEmpty() bool { return len(r.Rows) == 0 }

// Lookup returns the row for a region code.
func (r *ParsedMapResult) Lookup(code string) (MapRow, bool) {
	for _, row := range r.Rows {
		if row.RegionCode == code {
			return row, true
		}
	}
	return MapRow{}, false
}
