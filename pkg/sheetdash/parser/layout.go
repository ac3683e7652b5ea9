package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/xuri/excelize/v2"
)

// Layout describes where one report template keeps its title, headers and
// data. Cell references use A1 notation so a template change is a data edit.
type Layout struct {
	// Kind is the parser kind the layout belongs to.
	Kind Kind `json:"kind"`
	// MinRows is the smallest grid the layout reads; smaller grids parse to an empty result.
	MinRows int `json:"min_rows"`
	// Title lists the title cells, tried in order until one is non-blank.
	Title []string `json:"title,omitempty"`
	// DefaultTitle is used when every title cell is blank.
	DefaultTitle string `json:"default_title,omitempty"`
	// Subtitle is the subtitle cell.
	Subtitle string `json:"subtitle,omitempty"`
	// Headers is the series header range, e.g. "B2:E2". "B2:" runs to the end of the row.
	Headers string `json:"headers,omitempty"`
	// FixedHeaders keeps the full header width even when the header row is shorter.
	FixedHeaders bool `json:"fixed_headers,omitempty"`
	// SeriesFallback names blank headers "Series N".
	SeriesFallback bool `json:"series_fallback,omitempty"`
	// Key is the column holding the row key (category, date, month, region).
	Key string `json:"key,omitempty"`
	// Value is the value column for single-value layouts.
	Value string `json:"value,omitempty"`
	// Rows is the data row span, e.g. "3:5"; "3:" runs to the last row.
	Rows string `json:"rows"`
	// Total is the headline total cell.
	Total string `json:"total,omitempty"`
	// Current is the current-period count cell.
	Current string `json:"current,omitempty"`
	// Prior is the prior-period count cell.
	Prior string `json:"prior,omitempty"`

	headers  models.CellRange
	rows     models.CellRange
	keyCol   int
	valueCol int
}

// layouts holds the descriptor of every kind; resolved in init.
var layouts = map[Kind]*Layout{
	KindCategoryShareBar: {
		MinRows: 3, Title: []string{"G2", "A1"},
		Headers: "B2:E2", Key: "A", Rows: "3:5",
	},
	KindExtendedShare: {
		MinRows: 3, Title: []string{"M2", "A1"},
		Headers: "B2:K2", Key: "A", Rows: "3:11",
	},
	KindDailyRawTimeSeries: {
		MinRows: 3, Title: []string{"F2"},
		Headers: "B2:D2", SeriesFallback: true, Key: "A", Rows: "3:",
	},
	KindMonthlyFixedSeries: {
		MinRows: 3, Title: []string{"E2"},
		Headers: "B2:C2", SeriesFallback: true, Key: "A", Rows: "2:14",
		Total: "H2", Current: "K2", Prior: "K5",
	},
	KindMonthlyTimeSeries: {
		MinRows: 3, Title: []string{"A1"},
		Headers: "B2:", SeriesFallback: true, Key: "A", Rows: "3:",
	},
	KindTable: {
		MinRows: 1, Title: []string{"A1"}, DefaultTitle: "Table",
		Headers: "A2:", Rows: "3:",
	},
	KindMap: {
		MinRows: 3, Title: []string{"D2"},
		Key: "A", Value: "B", Rows: "3:",
	},
	KindStackedBarVertical: {
		MinRows: 3, Title: []string{"F2"},
		Headers: "B2:D2", FixedHeaders: true, SeriesFallback: true, Key: "A", Rows: "3:",
	},
	KindWidgetStats: {
		MinRows: 3, Title: []string{"F2"}, Subtitle: "F3",
		Headers: "B2:C2", FixedHeaders: true, SeriesFallback: true, Key: "A", Rows: "3:",
		Current: "H2", Prior: "H5",
	},
	KindPie: {
		MinRows: 3, Title: []string{"F2", "A1"},
		Key: "A", Value: "B", Rows: "3:",
	},
	KindHeatmap: {
		MinRows: 3, Title: []string{"A1"},
		Headers: "B2:", Key: "A", Rows: "3:",
	},
}

func init() {
	for kind, l := range layouts {
		l.Kind = kind
		if err := l.resolve(); err != nil {
			panic(fmt.Sprintf("parser: layout %s: %v", kind, err))
		}
	}
}

// LayoutFor returns a copy of the descriptor for kind.
func LayoutFor(kind Kind) (Layout, bool) {
	l, ok := layouts[kind]
	if !ok {
		return Layout{}, false
	}
	return *l, true
}

// Layouts returns every descriptor in Kinds order.
func Layouts() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, k := range Kinds() {
		out = append(out, *layouts[k])
	}
	return out
}

// resolve turns the A1 references into coordinates.
func (l *Layout) resolve() error {
	for _, ref := range append(append([]string{}, l.Title...), l.Subtitle, l.Total, l.Current, l.Prior) {
		if ref == "" {
			continue
		}
		if _, _, err := excelize.CellNameToCoordinates(ref); err != nil {
			return fmt.Errorf("cell %q: %w", ref, err)
		}
	}

	if l.Headers != "" {
		area, err := parseRangeToArea(l.Headers)
		if err != nil {
			return fmt.Errorf("headers %q: %w", l.Headers, err)
		}
		l.headers = area
	}

	first, last, err := parseRowSpan(l.Rows)
	if err != nil {
		return fmt.Errorf("rows %q: %w", l.Rows, err)
	}
	l.rows = models.CellRange{R1: first, R2: last}

	if l.Key != "" {
		if l.keyCol, err = excelize.ColumnNameToNumber(l.Key); err != nil {
			return fmt.Errorf("key %q: %w", l.Key, err)
		}
	}
	if l.Value != "" {
		if l.valueCol, err = excelize.ColumnNameToNumber(l.Value); err != nil {
			return fmt.Errorf("value %q: %w", l.Value, err)
		}
	}
	return nil
}

// parseRangeToArea parses a range like "B2:E2" or the open-ended "B2:".
func parseRangeToArea(rangeStr string) (models.CellRange, error) {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")
	parts := strings.Split(rangeStr, ":")
	if len(parts) != 2 {
		return models.CellRange{}, fmt.Errorf("expected START:END")
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.CellRange{}, err
	}
	area := models.CellRange{R1: startRow, C1: startCol, R2: startRow}
	if parts[1] == "" {
		return area, nil
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.CellRange{}, err
	}
	area.C2, area.R2 = endCol, endRow
	return area, nil
}

// parseRowSpan parses "3:5" or the open-ended "3:".
func parseRowSpan(span string) (int, int, error) {
	parts := strings.Split(span, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected FIRST:LAST")
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil || first < 1 {
		return 0, 0, fmt.Errorf("invalid first row %q", parts[0])
	}
	if parts[1] == "" {
		return first, 0, nil
	}
	last, err := strconv.Atoi(parts[1])
	if err != nil || last < first {
		return 0, 0, fmt.Errorf("invalid last row %q", parts[1])
	}
	return first, last, nil
}

// cell reads an A1 reference from the grid; descriptors are validated in init.
func cell(g models.Grid, ref string) string {
	if ref == "" {
		return ""
	}
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(g.Cell(row, col))
}

// title returns the first non-blank title cell, or DefaultTitle.
func (l *Layout) title(g models.Grid) string {
	for _, ref := range l.Title {
		if v := cell(g, ref); v != "" {
			return v
		}
	}
	return l.DefaultTitle
}

// seriesLabels reads the header range. Without FixedHeaders the labels stop
// where the header row ends.
func (l *Layout) seriesLabels(g models.Grid) []string {
	h := l.headers
	last := h.C2
	rowLen := 0
	if h.R1 <= g.Rows() {
		rowLen = len(g[h.R1-1])
	}
	if last == 0 || (!l.FixedHeaders && last > rowLen) {
		last = rowLen
	}

	var labels []string
	for col := h.C1; col <= last; col++ {
		label := g.Trimmed(h.R1, col)
		if label == "" && l.SeriesFallback {
			label = fmt.Sprintf("Series %d", col-h.C1+1)
		}
		labels = append(labels, label)
	}
	return labels
}

// eachRow calls fn for every data row whose key cell is non-blank.
func (l *Layout) eachRow(g models.Grid, fn func(row int, key string)) {
	last := g.Rows()
	if l.rows.R2 > 0 && l.rows.R2 < last {
		last = l.rows.R2
	}
	for row := l.rows.R1; row <= last; row++ {
		key := g.Trimmed(row, l.keyCol)
		if key == "" {
			continue
		}
		fn(row, key)
	}
}

// seriesCol returns the grid column of the i-th series.
func (l *Layout) seriesCol(i int) int {
	return l.headers.C1 + i
}

// A1 renders a cell range in A1 notation, e.g. "A1:D10".
func A1(r models.CellRange) string {
	start, err := excelize.CoordinatesToCellName(r.C1, r.R1)
	if err != nil {
		return ""
	}
	end, err := excelize.CoordinatesToCellName(r.C2, r.R2)
	if err != nil {
		return start
	}
	return start + ":" + end
}
