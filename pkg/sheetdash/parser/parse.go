package parser

import (
	"fmt"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// Parse applies the layout of kind to the grid. Per-kind parsers never fail;
// the only error is ErrUnknownKind.
func Parse(kind Kind, g models.Grid) (models.Result, error) {
	l, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	switch kind {
	case KindCategoryShareBar, KindExtendedShare, KindStackedBarVertical:
		return parseCategory(l, g), nil
	case KindDailyRawTimeSeries:
		return parseDailyRaw(l, g), nil
	case KindMonthlyFixedSeries:
		return parseMonthlyStats(l, g), nil
	case KindMonthlyTimeSeries:
		return parseMonthlyTimeSeries(l, g), nil
	case KindTable:
		return parseTable(l, g), nil
	case KindMap:
		return parseMap(l, g), nil
	case KindWidgetStats:
		return parseWidgetStats(l, g), nil
	case KindPie:
		return parsePie(l, g), nil
	case KindHeatmap:
		return parseHeatmap(l, g), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
