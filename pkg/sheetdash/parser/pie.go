package parser

import (
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// parsePie reads the pie layout: category / value rows folded into a single
// series. Rows with a blank or non-numeric value are left out.
func parsePie(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}

	title := l.title(g)
	categories := []string{}
	values := []*float64{}
	l.eachRow(g, func(row int, category string) {
		raw := strings.TrimSpace(g.Cell(row, l.valueCol))
		if raw == "" {
			return
		}
		v, ok := ParseNumber(raw)
		if !ok {
			return
		}
		categories = append(categories, category)
		values = append(values, models.Float(v))
	})

	label := title
	if label == "" {
		label = "Categories"
	}
	return &models.ParsedSheetResult{
		HeaderTitle: title,
		ChartData: models.ChartData{
			Labels:   categories,
			Datasets: []models.ChartSeries{{Label: label, Data: values}},
		},
	}
}
