package models

// Point is one explicit-x data point of a time series.
type Point struct {
	// X is the category or ISO date the value belongs to.
	X string `json:"x"`
	// Y is the value; nil renders as a gap.
	Y *float64 `json:"y"`
}

// ChartSeries represents one named sub-dataset of a chart.
type ChartSeries struct {
	// Label is the series display name.
	Label string `json:"label"`
	// Data holds index-based values aligned with ChartData.Labels.
	Data []*float64 `json:"data,omitempty"`
	// Points holds explicit-x values for time series.
	Points []Point `json:"points,omitempty"`
	// Style carries rendering hints attached by the styler.
	Style *SeriesStyle `json:"style,omitempty"`
}

// IsTimeSeries reports whether the series carries its own x values.
func (s ChartSeries) IsTimeSeries() bool {
	return len(s.Points) > 0
}

// Len returns the number of values in the series.
func (s ChartSeries) Len() int {
	if s.IsTimeSeries() {
		return len(s.Points)
	}
	return len(s.Data)
}

// ValueAt returns the i-th value regardless of representation.
func (s ChartSeries) ValueAt(i int) *float64 {
	if s.IsTimeSeries() {
		if i < 0 || i >= len(s.Points) {
			return nil
		}
		return s.Points[i].Y
	}
	if i < 0 || i >= len(s.Data) {
		return nil
	}
	return s.Data[i]
}

// Clone returns a deep copy of the series.
func (s ChartSeries) Clone() ChartSeries {
	out := ChartSeries{Label: s.Label}
	if s.Data != nil {
		out.Data = make([]*float64, len(s.Data))
		for i, v := range s.Data {
			out.Data[i] = copyFloat(v)
		}
	}
	if s.Points != nil {
		out.Points = make([]Point, len(s.Points))
		for i, p := range s.Points {
			out.Points[i] = Point{X: p.X, Y: copyFloat(p.Y)}
		}
	}
	if s.Style != nil {
		st := s.Style.Clone()
		out.Style = &st
	}
	return out
}

// ChartData is the chart-ready output of a parser.
type ChartData struct {
	// Labels are the category or date labels used by index-based series.
	Labels []string `json:"labels"`
	// Datasets is the ordered list of series.
	Datasets []ChartSeries `json:"datasets"`
}

// EmptyChartData returns chart data with empty, non-nil labels and datasets.
func EmptyChartData() ChartData {
	return ChartData{Labels: []string{}, Datasets: []ChartSeries{}}
}

// IsEmpty reports whether the chart has neither labels nor datasets.
func (c ChartData) IsEmpty() bool {
	return len(c.Labels) == 0 && len(c.Datasets) == 0
}

// Clone returns a deep copy of the chart data.
func (c ChartData) Clone() ChartData {
	out := ChartData{
		Labels:   append([]string{}, c.Labels...),
		Datasets: make([]ChartSeries, len(c.Datasets)),
	}
	for i, ds := range c.Datasets {
		out.Datasets[i] = ds.Clone()
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}
