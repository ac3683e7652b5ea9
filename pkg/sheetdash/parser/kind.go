// Package parser reads spreadsheet exports into grids and applies the fixed
// report layouts.
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind indicates a parser kind outside the closed set.
var ErrUnknownKind = errors.New("unknown parser kind")

// Kind selects which fixed spreadsheet layout a grid is read with.
type Kind string

const (
	// KindCategoryShareBar reads up to four share series over three categories.
	KindCategoryShareBar Kind = "category-share-bar"
	// KindExtendedShare reads up to ten share series over nine categories.
	KindExtendedShare Kind = "extended-share"
	// KindDailyRawTimeSeries reads a daily series with up to three columns.
	KindDailyRawTimeSeries Kind = "daily-raw-time-series"
	// KindMonthlyFixedSeries reads two series onto fixed Jan..Dec labels plus headline counts.
	KindMonthlyFixedSeries Kind = "monthly-fixed-series"
	// KindMonthlyTimeSeries reads any number of series over dated rows.
	KindMonthlyTimeSeries Kind = "monthly-time-series"
	// KindTable reads a titled table.
	KindTable Kind = "table"
	// KindMap reads region code / value pairs.
	KindMap Kind = "map"
	// KindStackedBarVertical reads three category series for a stacked bar.
	KindStackedBarVertical Kind = "stacked-bar-vertical"
	// KindWidgetStats reads two category series plus subtitle and period counts.
	KindWidgetStats Kind = "widget-stats"
	// KindPie reads category / value pairs into a single series.
	KindPie Kind = "pie"
	// KindHeatmap reads a monthly time series into a series-by-period matrix.
	KindHeatmap Kind = "heatmap"
)

// legacyKinds maps the tags used by existing card configurations.
var legacyKinds = map[string]Kind{
	"shareChart":                 KindCategoryShareBar,
	"shareChartExtended":         KindExtendedShare,
	"dailyTimeSeries":            KindDailyRawTimeSeries,
	"monthlyTimeSeriesHardCoded": KindMonthlyFixedSeries,
	"monthlyTimeSeries":          KindMonthlyTimeSeries,
	"widgetMap":                  KindMap,
	"barChart":                   KindStackedBarVertical,
	"widgetChart":                KindWidgetStats,
	"pieChart":                   KindPie,
}

// Kinds returns every parser kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindCategoryShareBar,
		KindExtendedShare,
		KindDailyRawTimeSeries,
		KindMonthlyFixedSeries,
		KindMonthlyTimeSeries,
		KindTable,
		KindMap,
		KindStackedBarVertical,
		KindWidgetStats,
		KindPie,
		KindHeatmap,
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := layouts[k]
	return ok
}

// ParseKind resolves a canonical or legacy kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if k, ok := legacyKinds[s]; ok {
		return k, nil
	}
	if k := Kind(strings.ToLower(s)); k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
