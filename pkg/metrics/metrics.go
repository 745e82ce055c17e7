package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// Every collector carries the graph label (Options.Name).

var (
	// 1. Mutations Appended (Counter)
	// Counts mutation records appended to element logs, by table and kind.
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_mutations_total",
			Help: "Total number of mutations appended to element logs",
		},
		[]string{"graph", "table", "kind"},
	)

	// 2. Deletes (Counter)
	// mode is "hard" or "soft".
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_deletes_total",
			Help: "Total number of deleted elements",
		},
		[]string{"graph", "table", "mode"},
	)

	// 3. Rows (Gauge)
	// Tracks the number of rows in the vertex and edge tables, soft-deleted rows included.
	Rows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kektorgraph_rows",
			Help: "Number of rows per element table",
		},
		[]string{"graph", "table"},
	)

	// 4. Path Search Duration (Histogram)
	PathSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_path_search_duration_seconds",
			Help:    "Duration of path searches in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"graph"},
	)

	// 5. Security Rejections (Counter)
	// Operations refused because of unregistered authorization labels.
	SecurityRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_security_rejections_total",
			Help: "Total number of operations rejected for unknown authorizations",
		},
		[]string{"graph"},
	)

	// 6. Search Index Errors (Counter)
	IndexErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_index_errors_total",
			Help: "Total number of failed search index notifications",
		},
		[]string{"graph", "op"},
	)
)
