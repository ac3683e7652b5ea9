package sheetdash

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

// CardType is the presentation type of a dashboard card.
type CardType string

const (
	CardStat      CardType = "stat"
	CardChart     CardType = "chart"
	CardTable     CardType = "table"
	CardCreative  CardType = "creative"
	CardWidget    CardType = "widget"
	CardWidgetMap CardType = "widgetMap"
	CardMap       CardType = "map"
	CardHeatmap   CardType = "heatmap"
)

// DefaultPalette is used by cards that name neither colours nor a palette.
var DefaultPalette = []string{
	"#00a89e", "#5b8def", "#fb923c", "#a3c65a", "#a78bfa",
	"#f87171", "#fb7185", "#facc15", "#4b6a9b", "#9ca3af",
}

// CardConfig describes one dashboard card.
type CardConfig struct {
	// ID is the unique card identifier.
	ID string `mapstructure:"id" json:"id" yaml:"id"`
	// Type is the presentation type.
	Type CardType `mapstructure:"type" json:"type" yaml:"type"`
	// Title overrides the title read from the export.
	Title string `mapstructure:"title" json:"title,omitempty" yaml:"title,omitempty"`
	// CSVURL is the published export URL (CSV or XLSX).
	CSVURL string `mapstructure:"csv_url" json:"csv_url" yaml:"csv_url"`
	// ChartType is the destination chart (line, line_tall, bar, column, pie, doughnut).
	ChartType string `mapstructure:"chart_type" json:"chart_type,omitempty" yaml:"chart_type,omitempty"`
	// ParserKind selects the layout explicitly. If empty it is inferred.
	ParserKind string `mapstructure:"parser_kind" json:"parser_kind,omitempty" yaml:"parser_kind,omitempty"`
	// Colors is an explicit palette.
	Colors []string `mapstructure:"colors" json:"colors,omitempty" yaml:"colors,omitempty"`
	// Palette names a configured palette when Colors is empty.
	Palette string `mapstructure:"palette" json:"palette,omitempty" yaml:"palette,omitempty"`
	// View is the default rollup for daily cards.
	View string `mapstructure:"view" json:"view,omitempty" yaml:"view,omitempty"`
	// Aggregates marks a card whose export is daily and rolled up on demand.
	Aggregates bool `mapstructure:"aggregates" json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
	// Gradient toggles the line fill gradient. If nil, defaults to true.
	Gradient *bool `mapstructure:"gradient" json:"gradient,omitempty" yaml:"gradient,omitempty"`
	// ShowTrend attaches a trend computed from the period counts.
	ShowTrend bool `mapstructure:"show_trend" json:"show_trend,omitempty" yaml:"show_trend,omitempty"`
	// ShowTotal displays the headline total.
	ShowTotal bool `mapstructure:"show_total" json:"show_total,omitempty" yaml:"show_total,omitempty"`
}

// Validate checks the fields a card cannot work without.
func (c CardConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("card id is required")
	}
	if c.ParserKind != "" {
		if _, err := parser.ParseKind(c.ParserKind); err != nil {
			return fmt.Errorf("card %s: %w", c.ID, err)
		}
	}
	if c.ChartType != "" {
		if _, err := style.ParseChartType(c.ChartType); err != nil {
			return fmt.Errorf("card %s: %w", c.ID, err)
		}
	}
	if c.View != "" {
		if _, err := aggregate.ParseView(c.View); err != nil {
			return fmt.Errorf("card %s: %w", c.ID, err)
		}
	}
	return nil
}

// ResolveKind picks the layout a card's export is read with. An explicit
// kind wins; cards that aggregate on demand read the daily layout; table,
// map and heatmap cards read their own layout; otherwise the chart type
// decides.
func ResolveKind(c CardConfig, view aggregate.View) (parser.Kind, error) {
	if c.ParserKind != "" {
		return parser.ParseKind(c.ParserKind)
	}
	if c.Aggregates && view != "" {
		return parser.KindDailyRawTimeSeries, nil
	}

	switch c.Type {
	case CardTable:
		return parser.KindTable, nil
	case CardMap, CardWidgetMap:
		return parser.KindMap, nil
	case CardHeatmap:
		return parser.KindHeatmap, nil
	}

	switch strings.ToLower(strings.TrimSpace(c.ChartType)) {
	case "bar", "column":
		return parser.KindWidgetStats, nil
	case "pie", "doughnut", "donut":
		return parser.KindPie, nil
	case "line_tall":
		return parser.KindMonthlyTimeSeries, nil
	default:
		return parser.KindMonthlyFixedSeries, nil
	}
}

// ResolveView returns the requested view, falling back to the card default.
func ResolveView(c CardConfig, requested string) (aggregate.View, error) {
	if strings.TrimSpace(requested) != "" {
		return aggregate.ParseView(requested)
	}
	return aggregate.ParseView(c.View)
}

// PrepareOptions builds the preparation options of a card. palettes maps
// palette names to colours.
func (c CardConfig) PrepareOptions(view aggregate.View, palettes map[string][]string) (Options, error) {
	chartType, err := style.ParseChartType(c.ChartType)
	if err != nil {
		return Options{}, err
	}

	colors := c.Colors
	if len(colors) == 0 && c.Palette != "" {
		p, ok := palettes[c.Palette]
		if !ok {
			return Options{}, fmt.Errorf("card %s: unknown palette %q", c.ID, c.Palette)
		}
		colors = p
	}
	if len(colors) == 0 {
		colors = DefaultPalette
	}

	opts := DefaultOptions()
	opts.ChartType = chartType
	opts.Colors = colors
	opts.Gradient = c.Gradient
	if c.Aggregates {
		opts.View = view
	}
	return opts, nil
}
