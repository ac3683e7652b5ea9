// Package aggregate rolls daily chart series up to weekly or monthly buckets.
package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// ErrUnknownView indicates a view outside daily, weekly and monthly.
var ErrUnknownView = errors.New("unknown aggregation view")

// View selects the bucket size.
type View string

const (
	Daily   View = "daily"
	Weekly  View = "weekly"
	Monthly View = "monthly"
)

// ParseView parses a view name. An empty name is Daily.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// bucketLayout is the format of every bucket key.
const bucketLayout = "2006-01-02"

// dateLayouts are the label formats accepted as dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01",
	"2006/01/02",
}

// ParseDate parses a series label as a calendar date.
func ParseDate(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BucketKey returns the bucket a dated label falls into: the Monday starting
// its week, or the first day of its month. Daily keys are the date itself.
func BucketKey(label string, view View) (string, bool) {
	t, ok := ParseDate(label)
	if !ok {
		return label, false
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch view {
	case Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -offset)
	case Monthly:
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t.Format(bucketLayout), true
}

// Report describes one aggregation run.
type Report struct {
	// Buckets is the number of output buckets.
	Buckets int `json:"buckets"`
	// InvalidLabels lists labels that could not be read as dates. Each one
	// is kept as its own bucket under the raw label.
	InvalidLabels []string `json:"invalid_labels,omitempty"`
}

// Aggregator sums daily series into buckets.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an Aggregator. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate sums every series per bucket. Buckets keep the order in which
// their first label appears; nil values count as 0. Daily returns a copy.
// Index-based series stay index-based, point series get one point per bucket.
func (a *Aggregator) Aggregate(data models.ChartData, view View) (models.ChartData, Report) {
	if view == Daily || view == "" {
		return data.Clone(), Report{Buckets: len(data.Labels)}
	}

	var report Report
	keys := []string{}
	index := make(map[string]int)
	sums := make([][]float64, len(data.Datasets))

	for i, label := range data.Labels {
		key, ok := BucketKey(label, view)
		if !ok {
			a.logger.Warn("invalid date label", "label", label, "view", string(view))
			report.InvalidLabels = append(report.InvalidLabels, label)
		}
		b, seen := index[key]
		if !seen {
			b = len(keys)
			index[key] = b
			keys = append(keys, key)
			for s := range sums {
				sums[s] = append(sums[s], 0)
			}
		}
		for s, ds := range data.Datasets {
			if v := ds.ValueAt(i); v != nil {
				sums[s][b] += *v
			}
		}
	}

	out := models.ChartData{
		Labels:   keys,
		Datasets: make([]models.ChartSeries, len(data.Datasets)),
	}
	for s, ds := range data.Datasets {
		series := models.ChartSeries{Label: ds.Label}
		if ds.Style != nil {
			st := ds.Style.Clone()
			series.Style = &st
		}
		if ds.IsTimeSeries() {
			series.Points = make([]models.Point, len(keys))
			for b, key := range keys {
				series.Points[b] = models.Point{X: key, Y: models.Float(sums[s][b])}
			}
		} else {
			series.Data = make([]*float64, len(keys))
			for b := range keys {
				series.Data[b] = models.Float(sums[s][b])
			}
		}
		out.Datasets[s] = series
	}

	report.Buckets = len(keys)
	a.logger.Debug("aggregated series", "view", string(view), "labels", len(data.Labels), "buckets", report.Buckets)
	return out, report
}

// AggregateSheet returns a copy of r with its chart data aggregated.
func (a *Aggregator) AggregateSheet(r *models.ParsedSheetResult, view View) (*models.ParsedSheetResult, Report) {
	out := r.Clone()
	chart, report := a.Aggregate(r.ChartData, view)
	out.ChartData = chart
	return out, report
}
