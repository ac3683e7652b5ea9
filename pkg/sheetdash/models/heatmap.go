package models

// HeatLevel buckets a heatmap cell by intensity.
type HeatLevel string

const (
	HeatNone   HeatLevel = "none"
	HeatLow    HeatLevel = "low"
	HeatMedium HeatLevel = "medium"
	HeatHigh   HeatLevel = "high"
)

// heatColors is the four-step teal ramp used for heat levels.
var heatColors = map[HeatLevel]string{
	HeatNone:   "#f0fdfc",
	HeatLow:    "#ccfbf1",
	HeatMedium: "#00a89e",
	HeatHigh:   "#134e4a",
}

// Color returns the fill colour for the level.
func (l HeatLevel) Color() string {
	return heatColors[l]
}

// ParsedHeatmapResult represents a series-by-period matrix.
type ParsedHeatmapResult struct {
	// HeaderTitle is the card title.
	HeaderTitle string `json:"headerTitle"`
	// XLabels are the period labels (abbreviated month names).
	XLabels []string `json:"xLabels"`
	// Dates are the ISO dates behind XLabels.
	Dates []string `json:"dates"`
	// YLabels are the series names.
	YLabels []string `json:"yLabels"`
	// Cells is indexed [y][x]; missing values are 0.
	Cells [][]float64 `json:"cells"`
	// Max is the largest cell value, 0 for an empty matrix.
	Max float64 `json:"max"`
}

// ResultKind implements Result.
func (r *ParsedHeatmapResult) ResultKind() string { return ResultHeatmap }

// IsEmpty implements Result.
func (r *ParsedHeatmapResult) IsEmpty() bool { return len(r.Cells) == 0 }

// Level classifies a value against the matrix maximum.
func (r *ParsedHeatmapResult) Level(value float64) HeatLevel {
	if r.Max == 0 {
		return HeatNone
	}
	intensity := value / r.Max
	if intensity > 1 {
		intensity = 1
	}
	switch {
	case intensity <= 0:
		return HeatNone
	case intensity < 0.33:
		return HeatLow
	case intensity < 0.66:
		return HeatMedium
	default:
		return HeatHigh
	}
}
