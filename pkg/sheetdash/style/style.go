// Package style attaches chart-type rendering hints to parsed chart data.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// ErrUnknownChartType indicates a chart type outside line, bar and pie.
var ErrUnknownChartType = errors.New("unknown chart type")

// ChartType is the destination chart of a styled series.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

var chartAliases = map[string]ChartType{
	"line":      ChartLine,
	"line_tall": ChartLine,
	"bar":       ChartBar,
	"column":    ChartBar,
	"pie":       ChartPie,
	"doughnut":  ChartPie,
	"donut":     ChartPie,
}

// ParseChartType resolves a chart type or one of its aliases. An empty name
// is ChartLine.
func ParseChartType(s string) (ChartType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ChartLine, nil
	}
	if t, ok := chartAliases[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
}

const (
	white            = "#ffffff"
	barCornerRadius  = 4
	gradientTopAlpha = 0.16
)

// Options configures Apply.
type Options struct {
	// Colors is the palette; series i uses Colors[i], or Colors[0] when the
	// palette is shorter than the series list.
	Colors []string
	// ChartType selects the hint set.
	ChartType ChartType
	// Gradient adds a vertical fill gradient to line series.
	Gradient bool
	// Hidden lists series indexes the viewer has toggled off. The rounded
	// top corners go to the last series not listed here.
	Hidden []int
}

// Apply returns a copy of data with a SeriesStyle on every series. Without
// colours the input is returned unchanged.
func Apply(data models.ChartData, opts Options) models.ChartData {
	if len(opts.Colors) == 0 {
		return data
	}

	out := data.Clone()
	top := topVisible(len(out.Datasets), opts.Hidden)
	for i := range out.Datasets {
		ds := &out.Datasets[i]
		base := opts.Colors[0]
		if i < len(opts.Colors) && opts.Colors[i] != "" {
			base = opts.Colors[i]
		}

		var st models.SeriesStyle
		switch opts.ChartType {
		case ChartLine:
			st = lineStyle(base, opts.Gradient)
		case ChartBar:
			st = barStyle(base, i == top)
		case ChartPie:
			st = pieStyle(opts.Colors, ds.Len())
		default:
			st = models.SeriesStyle{BorderColor: base, BackgroundColor: base}
		}
		ds.Style = &st
	}
	return out
}

// ApplySheet returns a copy of r with styled chart data.
func ApplySheet(r *models.ParsedSheetResult, opts Options) *models.ParsedSheetResult {
	if len(opts.Colors) == 0 {
		return r
	}
	out := r.Clone()
	out.ChartData = Apply(r.ChartData, opts)
	return out
}

func lineStyle(base string, gradient bool) models.SeriesStyle {
	st := models.SeriesStyle{
		BorderColor:      base,
		BackgroundColor:  base,
		BorderWidth:      2,
		PointRadius:      models.Float(0),
		PointHoverRadius: models.Float(3),
		Tension:          models.Float(0.2),
		Fill:             true,
		Clip:             models.Float(20),
	}
	if gradient {
		st.Gradient = []models.GradientStop{
			{Stop: 0, Color: HexToRGBA(base, 0)},
			{Stop: 1, Color: HexToRGBA(base, gradientTopAlpha)},
		}
	}
	return st
}

func barStyle(base string, top bool) models.SeriesStyle {
	corners := models.Corners{}
	if top {
		corners.TopLeft, corners.TopRight = barCornerRadius, barCornerRadius
	}
	return models.SeriesStyle{
		BorderColor:     white,
		BackgroundColor: HexToRGBA(base, 1),
		BorderWidth:     0.5,
		BorderSkipped:   lo.ToPtr(false),
		BorderRadius:    &corners,
	}
}

func pieStyle(colors []string, slices int) models.SeriesStyle {
	return models.SeriesStyle{
		BorderColor: white,
		BorderWidth: 2,
		SliceColors: lo.Times(slices, func(i int) string {
			c := colors[i%len(colors)]
			if c == "" {
				c = colors[0]
			}
			return HexToRGBA(c, 1)
		}),
		HoverBorderWidth: 3,
		HoverBorderColor: white,
	}
}

// topVisible returns the highest series index not in hidden, or -1.
func topVisible(n int, hidden []int) int {
	for i := n - 1; i >= 0; i-- {
		if !lo.Contains(hidden, i) {
			return i
		}
	}
	return -1
}
