package parser

import (
	"strings"
	"time"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// heatmapDateLayouts are tried in order when labelling matrix columns.
var heatmapDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01"}

// monthAbbrev returns "Jan".."Dec" for a dated label, or the label itself.
func monthAbbrev(date string) string {
	for _, layout := range heatmapDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return months[t.Month()-1]
		}
	}
	return date
}

// parseHeatmap reads a monthly time series and folds it into a matrix with
// one row per series and one column per dated label. Labels without a "-"
// are not dates and are dropped; a repeated date keeps its column. Missing
// or null values read as 0.
func parseHeatmap(l *Layout, g models.Grid) *models.ParsedHeatmapResult {
	result := &models.ParsedHeatmapResult{
		XLabels: []string{},
		Dates:   []string{},
		YLabels: []string{},
		Cells:   [][]float64{},
	}
	if g.Rows() < l.MinRows {
		return result
	}

	result.HeaderTitle = l.title(g)
	chart := dateSeries(l, g, NumberOrNull)
	for _, d := range chart.Labels {
		if !strings.Contains(d, "-") {
			continue
		}
		result.Dates = append(result.Dates, d)
		result.XLabels = append(result.XLabels, monthAbbrev(d))
	}

	for _, ds := range chart.Datasets {
		label := ds.Label
		if label == "" {
			label = "Unknown"
		}
		result.YLabels = append(result.YLabels, label)

		// A repeated date reads the first row for that date, null or not.
		byDate := make(map[string]float64, len(ds.Points))
		for _, p := range ds.Points {
			if _, seen := byDate[p.X]; seen {
				continue
			}
			byDate[p.X] = 0
			if p.Y != nil {
				byDate[p.X] = *p.Y
			}
		}

		row := make([]float64, len(result.Dates))
		for i, d := range result.Dates {
			row[i] = byDate[d]
			if row[i] > result.Max {
				result.Max = row[i]
			}
		}
		result.Cells = append(result.Cells, row)
	}
	return result
}
