package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExportMetrics() {
	r.ExportRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "libcert_export_rows_total",
			Help: "Total number of table points written by each sink",
		},
		[]string{"sink"}, // csv, snapshot, postgres, s3
	)

	r.ExportBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "libcert_export_bytes_total",
			Help: "Total number of bytes written by each sink",
		},
		[]string{"sink"},
	)

	r.ExportErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "libcert_export_errors_total",
			Help: "Total number of failed exports",
		},
		[]string{"sink"},
	)

	r.ExportDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libcert_export_duration_seconds",
			Help:    "Duration of exports in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)
}
