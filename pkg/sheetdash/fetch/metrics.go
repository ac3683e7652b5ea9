package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts cache lookups by result (hit, miss, expired).
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetdash",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// LoadsTotal counts fetch+parse loads by kind and status.
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetdash",
			Subsystem: "cache",
			Name:      "loads_total",
			Help:      "Total number of fetch and parse loads",
		},
		[]string{"kind", "status"},
	)

	// LoadDuration measures load duration.
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetdash",
			Subsystem: "cache",
			Name:      "load_duration_seconds",
			Help:      "Duration of fetch and parse loads in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Entries tracks the number of cached results.
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sheetdash",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of cached results",
		},
	)

	// FetchTotal counts HTTP fetches by status code class.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetdash",
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of export fetches",
		},
		[]string{"code"},
	)
)

// RecordLookup records a cache lookup.
func RecordLookup(result string) {
	LookupsTotal.WithLabelValues(result).Inc()
}

// RecordLoad records a completed load.
func RecordLoad(kind, status string, duration float64) {
	LoadsTotal.WithLabelValues(kind, status).Inc()
	LoadDuration.WithLabelValues(kind).Observe(duration)
}

// RecordFetch records an HTTP fetch. code is "error" for transport failures.
func RecordFetch(code string) {
	FetchTotal.WithLabelValues(code).Inc()
}
