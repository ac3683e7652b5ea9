// Package sheetdash turns published spreadsheet exports into chart-ready data.
package sheetdash

import (
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

// Options configures how a parsed result is prepared for display.
type Options struct {
	// View specifies the rollup of daily series (daily, weekly, monthly).
	View aggregate.View
	// ChartType selects the rendering hints.
	ChartType style.ChartType
	// Colors is the series palette. Without colours no hints are attached.
	Colors []string
	// Gradient specifies whether line series get a fill gradient.
	// If nil, defaults to true.
	Gradient *bool
	// Hidden lists series indexes toggled off by the viewer.
	Hidden []int
}

// DefaultOptions returns default preparation options.
func DefaultOptions() Options {
	return Options{
		View:      aggregate.Daily,
		ChartType: style.ChartLine,
	}
}

// ShouldUseGradient returns whether line series get a fill gradient.
func (o Options) ShouldUseGradient() bool {
	if o.Gradient != nil {
		return *o.Gradient
	}
	return true
}

// ShouldAggregate returns whether daily series are rolled up.
func (o Options) ShouldAggregate() bool {
	return o.View != "" && o.View != aggregate.Daily
}

// Prepare aggregates and styles a parsed result. Only sheet results carry
// series; other shapes are returned as they are. The input is not modified.
func Prepare(result models.Result, opts Options, agg *aggregate.Aggregator) (models.Result, aggregate.Report) {
	sheet, ok := result.(*models.ParsedSheetResult)
	if !ok || sheet == nil {
		return result, aggregate.Report{}
	}

	report := aggregate.Report{Buckets: len(sheet.ChartData.Labels)}
	if opts.ShouldAggregate() {
		if agg == nil {
			agg = aggregate.New(nil)
		}
		sheet, report = agg.AggregateSheet(sheet, opts.View)
	}

	return style.ApplySheet(sheet, style.Options{
		Colors:    opts.Colors,
		ChartType: opts.ChartType,
		Gradient:  opts.ShouldUseGradient(),
		Hidden:    opts.Hidden,
	}), report
}
