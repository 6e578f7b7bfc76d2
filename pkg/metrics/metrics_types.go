package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Parse Metrics
	FilesParsedTotal         *prometheus.CounterVec
	TablesExtractedTotal     prometheus.Counter
	TablesSkippedTotal       *prometheus.CounterVec
	DuplicateTablesTotal     prometheus.Counter
	ShapeHintMismatchesTotal prometheus.Counter
	LinesScannedTotal        prometheus.Counter
	ParseDuration            *prometheus.HistogramVec

	// Batch Metrics
	BatchFilesInFlight prometheus.Gauge
	BatchDuration      prometheus.Histogram

	// Export Metrics
	ExportRowsTotal   *prometheus.CounterVec
	ExportBytesTotal  *prometheus.CounterVec
	ExportErrorsTotal *prometheus.CounterVec
	ExportDuration    *prometheus.HistogramVec

	// Process metrics, refreshed before a textfile write
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge
	GCCycles         prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initParseMetrics()
	r.initBatchMetrics()
	r.initExportMetrics()
	r.initProcessMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
