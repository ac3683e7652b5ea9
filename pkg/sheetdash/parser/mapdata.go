package parser

import (
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// parseMap reads the map layout: region code in column A, value in column B.
// Rows missing either are skipped; a repeated region replaces the earlier
// value in place.
func parseMap(l *Layout, g models.Grid) *models.ParsedMapResult {
	result := &models.ParsedMapResult{Rows: []models.MapRow{}}
	if g.Rows() < l.MinRows {
		return result
	}

	result.HeaderTitle = l.title(g)
	index := make(map[string]int)
	l.eachRow(g, func(row int, region string) {
		value := strings.TrimSpace(g.Cell(row, l.valueCol))
		if value == "" {
			return
		}
		mr := models.MapRow{RegionCode: region, Value: value, Number: NumberOrNull(value)}
		if i, ok := index[region]; ok {
			result.Rows[i] = mr
			return
		}
		index[region] = len(result.Rows)
		result.Rows = append(result.Rows, mr)
	})
	return result
}
