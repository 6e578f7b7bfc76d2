package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initParseMetrics() {
	r.FilesParsedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "libcert_files_parsed_total",
			Help: "Total number of library files parsed",
		},
		[]string{"dialect", "status"}, // ok, error
	)

	r.TablesExtractedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "libcert_tables_extracted_total",
			Help: "Total number of table blocks extracted into a model",
		},
	)

	r.TablesSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "libcert_tables_skipped_total",
			Help: "Total number of table headers left out of a model",
		},
		[]string{"reason"}, // blank_field, min_pulse_width, power
	)

	r.DuplicateTablesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "libcert_duplicate_tables_total",
			Help: "Total number of table variants overwritten by a later block with the same key",
		},
	)

	r.ShapeHintMismatchesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "libcert_shape_hint_mismatches_total",
			Help: "Total number of tables whose size differs from the family hint",
		},
	)

	r.LinesScannedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "libcert_lines_scanned_total",
			Help: "Total number of library lines scanned",
		},
	)

	r.ParseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libcert_parse_duration_seconds",
			Help:    "Duration of single file parses in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"dialect"},
	)
}
