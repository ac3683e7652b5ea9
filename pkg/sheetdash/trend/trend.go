// Package trend compares period counts and formats headline figures.
package trend

import "math"

// Trend classifies the change between two period counts.
type Trend string

const (
	Increment Trend = "increment"
	Decrement Trend = "decrement"
	NoChange  Trend = "no-change"
)

// Result is a trend classification and its magnitude in percent.
type Result struct {
	Trend      Trend   `json:"trend"`
	Percentage float64 `json:"percentage"`
}

// Compute compares the current count against the prior one.
// A zero prior count is special-cased rather than divided by.
func Compute(current, prior float64) Result {
	if prior == 0 {
		if current == 0 {
			return Result{Trend: NoChange, Percentage: 0}
		}
		return Result{Trend: Increment, Percentage: 100}
	}

	change := current - prior
	switch {
	case change > 0:
		return Result{Trend: Increment, Percentage: math.Abs(change / prior * 100)}
	case change < 0:
		return Result{Trend: Decrement, Percentage: math.Abs(change / prior * 100)}
	default:
		return Result{Trend: NoChange, Percentage: 0}
	}
}

// FromCounts computes a trend from nullable counts.
// It returns false when either count is missing.
func FromCounts(current, prior *float64) (Result, bool) {
	if current == nil || prior == nil {
		return Result{}, false
	}
	return Compute(*current, *prior), true
}
