package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/trend"
)

const gap = "-"

// RenderResult writes a parsed result as a human-readable table.
func RenderResult(w io.Writer, p *Printer, r models.Result) error {
	switch v := r.(type) {
	case *models.ParsedSheetResult:
		return renderSheet(w, p, v)
	case *models.ParsedTableResult:
		return renderTable(w, p, v)
	case *models.ParsedMapResult:
		return renderMap(w, p, v)
	case *models.ParsedHeatmapResult:
		return renderHeatmap(w, p, v)
	case nil:
		p.Warning("no data")
		return nil
	default:
		return fmt.Errorf("cannot render %T", r)
	}
}

// RenderCard writes one card: its state line, trend, then its data.
func RenderCard(w io.Writer, p *Printer, card models.CardData) error {
	p.Header(card.ID)
	switch {
	case card.Error != "":
		p.Error("%s", card.Error)
		return nil
	case card.Loading:
		p.Info("loading...")
		return nil
	case card.Data == nil:
		p.Print("%s", p.Dim("no data"))
		return nil
	}
	if card.Trend != nil {
		p.Print("trend: %s", p.TrendBadge(*card.Trend))
	}
	return RenderResult(w, p, card.Data)
}

func renderSheet(w io.Writer, p *Printer, r *models.ParsedSheetResult) error {
	if r.HeaderTitle != "" {
		p.Print("%s", p.Bold(r.HeaderTitle))
	}
	if r.Subtitle != "" {
		p.Print("%s", p.Dim(r.Subtitle))
	}
	if r.Total != nil {
		p.Print("total: %s", trend.FormatCompact(*r.Total))
	}

	labels, values := sheetRows(r.ChartData)
	headers := make([]string, 0, len(r.ChartData.Datasets)+1)
	headers = append(headers, "LABEL")
	for _, ds := range r.ChartData.Datasets {
		headers = append(headers, ds.Label)
	}

	t := NewTableWithWriter(w, headers)
	for i, label := range labels {
		row := make([]string, 0, len(headers))
		row = append(row, label)
		for _, v := range values[i] {
			row = append(row, formatValue(v))
		}
		t.AddRow(row)
	}
	return t.Render()
}

// sheetRows lines up index-based and point-based series by label.
func sheetRows(c models.ChartData) ([]string, [][]*float64) {
	labels := append([]string(nil), c.Labels...)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, ok := index[l]; !ok {
			index[l] = i
		}
	}
	for _, ds := range c.Datasets {
		for _, pt := range ds.Points {
			if _, ok := index[pt.X]; !ok {
				index[pt.X] = len(labels)
				labels = append(labels, pt.X)
			}
		}
	}

	values := make([][]*float64, len(labels))
	for i := range values {
		values[i] = make([]*float64, len(c.Datasets))
	}
	for j, ds := range c.Datasets {
		if ds.IsTimeSeries() {
			for _, pt := range ds.Points {
				if values[index[pt.X]][j] == nil {
					values[index[pt.X]][j] = pt.Y
				}
			}
			continue
		}
		for i := range c.Labels {
			values[i][j] = ds.ValueAt(i)
		}
	}
	return labels, values
}

func renderTable(w io.Writer, p *Printer, r *models.ParsedTableResult) error {
	if r.HeaderTitle != "" {
		p.Print("%s", p.Bold(r.HeaderTitle))
	}
	if r.Range != "" {
		p.Print("%s", p.Dim("range "+r.Range))
	}
	t := NewTableWithWriter(w, r.TableData.Columns)
	width := len(r.TableData.Columns)
	for _, row := range r.TableData.Rows {
		if width > 0 && len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		t.AddRow(row)
	}
	return t.Render()
}

func renderMap(w io.Writer, p *Printer, r *models.ParsedMapResult) error {
	if r.HeaderTitle != "" {
		p.Print("%s", p.Bold(r.HeaderTitle))
	}
	t := NewTableWithWriter(w, []string{"REGION", "VALUE"})
	for _, row := range r.Rows {
		t.AddRow([]string{row.RegionCode, row.Value})
	}
	return t.Render()
}

func renderHeatmap(w io.Writer, p *Printer, r *models.ParsedHeatmapResult) error {
	if r.HeaderTitle != "" {
		p.Print("%s", p.Bold(r.HeaderTitle))
	}
	headers := append([]string{"SERIES"}, r.XLabels...)
	t := NewTableWithWriter(w, headers)
	for y, label := range r.YLabels {
		row := []string{label}
		if y < len(r.Cells) {
			for _, v := range r.Cells[y] {
				row = append(row, fmt.Sprintf("%s (%s)", formatFloat(v), r.Level(v)))
			}
		}
		t.AddRow(row)
	}
	return t.Render()
}

func formatValue(v *float64) string {
	if v == nil {
		return gap
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
