package parser

import (
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// emptySheet is the degenerate result for grids shorter than a layout.
func emptySheet() *models.ParsedSheetResult {
	return &models.ParsedSheetResult{ChartData: models.EmptyChartData()}
}

// categorySeries reads one zero-fallback series per header over the keyed
// data rows. Categories become the chart labels.
func categorySeries(l *Layout, g models.Grid, labels []string) models.ChartData {
	categories := []string{}
	values := make([][]*float64, len(labels))
	for i := range values {
		values[i] = []*float64{}
	}

	l.eachRow(g, func(row int, key string) {
		categories = append(categories, key)
		for i := range labels {
			values[i] = append(values[i], models.Float(NumberOrZero(g.Cell(row, l.seriesCol(i)))))
		}
	})

	datasets := make([]models.ChartSeries, len(labels))
	for i, label := range labels {
		datasets[i] = models.ChartSeries{Label: label, Data: values[i]}
	}
	return models.ChartData{Labels: categories, Datasets: datasets}
}

// parseCategory reads the category layouts (category-share-bar,
// extended-share, stacked-bar-vertical): one zero-fallback series per
// header column, one row per category.
func parseCategory(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}
	return &models.ParsedSheetResult{
		HeaderTitle: l.title(g),
		ChartData:   categorySeries(l, g, l.seriesLabels(g)),
	}
}

// parseWidgetStats reads the widget-stats layout: two category series, a
// subtitle and the current/prior period counts.
func parseWidgetStats(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}
	return &models.ParsedSheetResult{
		HeaderTitle:        l.title(g),
		Subtitle:           cell(g, l.Subtitle),
		ChartData:          categorySeries(l, g, l.seriesLabels(g)),
		CurrentPeriodCount: CleanNumber(cell(g, l.Current)),
		PriorPeriodCount:   CleanNumber(cell(g, l.Prior)),
	}
}
