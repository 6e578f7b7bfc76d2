package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBatchMetrics() {
	r.BatchFilesInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "libcert_batch_files_in_flight",
			Help: "Number of files currently being parsed by batch workers",
		},
	)

	r.BatchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "libcert_batch_duration_seconds",
			Help:    "Duration of batch parses in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)
}
