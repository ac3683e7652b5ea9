package models

// GradientStop is one colour stop of a vertical gradient, 0 at the bottom.
type GradientStop struct {
	// Stop is the position in [0, 1].
	Stop float64 `json:"stop"`
	// Color is an rgba() colour.
	Color string `json:"color"`
}

// Corners holds per-corner radii in pixels.
type Corners struct {
	TopLeft     int `json:"topLeft"`
	TopRight    int `json:"topRight"`
	BottomLeft  int `json:"bottomLeft"`
	BottomRight int `json:"bottomRight"`
}

// SeriesStyle represents rendering hints for one series.
type SeriesStyle struct {
	// BorderColor is the line or outline colour.
	BorderColor string `json:"borderColor,omitempty"`
	// BackgroundColor is the fill colour when a single colour applies.
	BackgroundColor string `json:"backgroundColor,omitempty"`
	// SliceColors holds one colour per data point (pie charts).
	SliceColors []string `json:"sliceColors,omitempty"`
	// Gradient is a vertical fill gradient (line charts), bottom to top.
	Gradient []GradientStop `json:"gradient,omitempty"`
	// BorderWidth is the outline width in pixels.
	BorderWidth float64 `json:"borderWidth,omitempty"`
	// BorderRadius is set for bar series (nil otherwise).
	BorderRadius *Corners `json:"borderRadius,omitempty"`
	// BorderSkipped is false when every bar edge is drawn.
	BorderSkipped *bool `json:"borderSkipped,omitempty"`
	// PointRadius is the resting point radius (line charts).
	PointRadius *float64 `json:"pointRadius,omitempty"`
	// PointHoverRadius is the hovered point radius (line charts).
	PointHoverRadius *float64 `json:"pointHoverRadius,omitempty"`
	// Tension is the bezier curve tension (line charts).
	Tension *float64 `json:"tension,omitempty"`
	// Fill requests an area fill under the line.
	Fill bool `json:"fill,omitempty"`
	// Clip is the clipping margin in pixels.
	Clip *float64 `json:"clip,omitempty"`
	// HoverBorderWidth is the hovered outline width (pie charts).
	HoverBorderWidth float64 `json:"hoverBorderWidth,omitempty"`
	// HoverBorderColor is the hovered outline colour (pie charts).
	HoverBorderColor string `json:"hoverBorderColor,omitempty"`
}

// Clone returns a deep copy of the style.
func (s SeriesStyle) Clone() SeriesStyle {
	out := s
	out.SliceColors = append([]string(nil), s.SliceColors...)
	out.Gradient = append([]GradientStop(nil), s.Gradient...)
	if s.BorderRadius != nil {
		c := *s.BorderRadius
		out.BorderRadius = &c
	}
	if s.BorderSkipped != nil {
		b := *s.BorderSkipped
		out.BorderSkipped = &b
	}
	out.PointRadius = copyFloat(s.PointRadius)
	out.PointHoverRadius = copyFloat(s.PointHoverRadius)
	out.Tension = copyFloat(s.Tension)
	out.Clip = copyFloat(s.Clip)
	return out
}
