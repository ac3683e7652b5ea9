package models

import "github.com/ukaji3/sheetdash-go/pkg/sheetdash/trend"

// CardData is the {data, loading, error} triple handed to the presentation layer.
type CardData struct {
	// ID is the card identifier.
	ID string `json:"id"`
	// Data is the parsed and prepared result, nil while loading or on error.
	Data Result `json:"data"`
	// Loading is true while a fetch for the card is still running.
	Loading bool `json:"loading"`
	// Error is the user-visible error message, empty on success.
	Error string `json:"error,omitempty"`
	// Trend compares current and prior period counts when the card shows one.
	Trend *trend.Result `json:"trend,omitempty"`
}

// BoardData represents every card of a dashboard.
type BoardData struct {
	// Cards maps card ID to its data.
	Cards map[string]CardData `json:"cards"`
}
