package parser

import (
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// dateSeries reads one point series per header over dated rows. parse
// decides between zero-fallback and null-preserving values.
func dateSeries(l *Layout, g models.Grid, parse func(string) *float64) models.ChartData {
	labels := l.seriesLabels(g)
	dates := []string{}
	points := make([][]models.Point, len(labels))
	for i := range points {
		points[i] = []models.Point{}
	}

	l.eachRow(g, func(row int, date string) {
		dates = append(dates, date)
		for i := range labels {
			points[i] = append(points[i], models.Point{X: date, Y: parse(g.Cell(row, l.seriesCol(i)))})
		}
	})

	datasets := make([]models.ChartSeries, len(labels))
	for i, label := range labels {
		datasets[i] = models.ChartSeries{Label: label, Points: points[i]}
	}
	return models.ChartData{Labels: dates, Datasets: datasets}
}

func zeroFallback(s string) *float64 {
	return models.Float(NumberOrZero(s))
}

// parseDailyRaw reads the daily-raw-time-series layout. Missing values are 0
// so weekly and monthly rollups sum cleanly.
func parseDailyRaw(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}
	return &models.ParsedSheetResult{
		HeaderTitle: l.title(g),
		ChartData:   dateSeries(l, g, zeroFallback),
	}
}

// parseMonthlyTimeSeries reads the monthly-time-series layout. Missing
// values stay nil.
func parseMonthlyTimeSeries(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}
	return &models.ParsedSheetResult{
		HeaderTitle: l.title(g),
		ChartData:   dateSeries(l, g, NumberOrNull),
	}
}

// months are the fixed labels of the monthly-fixed-series layout.
var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthLabel normalises "jan", "Jan" or "January" to "Jan".
func monthLabel(s string) (string, bool) {
	for i, m := range months {
		if strings.EqualFold(s, m) || strings.EqualFold(s, monthNames[i]) {
			return m, true
		}
	}
	return "", false
}

// parseMonthlyStats reads the monthly-fixed-series layout: up to two series
// mapped onto Jan..Dec, plus the headline total and period counts. Months
// without a row stay nil.
func parseMonthlyStats(l *Layout, g models.Grid) *models.ParsedSheetResult {
	if g.Rows() < l.MinRows {
		return emptySheet()
	}

	labels := l.seriesLabels(g)
	byMonth := make([]map[string]*float64, len(labels))
	for i := range byMonth {
		byMonth[i] = make(map[string]*float64)
	}

	l.eachRow(g, func(row int, key string) {
		month, ok := monthLabel(key)
		if !ok {
			return
		}
		for i := range labels {
			byMonth[i][month] = NumberOrNull(g.Cell(row, l.seriesCol(i)))
		}
	})

	datasets := make([]models.ChartSeries, len(labels))
	for i, label := range labels {
		data := make([]*float64, len(months))
		for j, m := range months {
			data[j] = byMonth[i][m]
		}
		datasets[i] = models.ChartSeries{Label: label, Data: data}
	}

	return &models.ParsedSheetResult{
		HeaderTitle:        l.title(g),
		ChartData:          models.ChartData{Labels: append([]string{}, months...), Datasets: datasets},
		Total:              CleanNumber(cell(g, l.Total)),
		CurrentPeriodCount: CleanNumber(cell(g, l.Current)),
		PriorPeriodCount:   CleanNumber(cell(g, l.Prior)),
	}
}
