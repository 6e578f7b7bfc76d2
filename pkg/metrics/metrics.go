package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/libcert/pkg/liberty"
)

// RecordParse records one file parse. Stats of a failed parse are not
// counted; only the file status and duration are.
func (r *Registry) RecordParse(dialect string, stats liberty.Stats, duration time.Duration, err error) {
	r.ParseDuration.WithLabelValues(dialect).Observe(duration.Seconds())
	if err != nil {
		r.FilesParsedTotal.WithLabelValues(dialect, "error").Inc()
		return
	}
	r.FilesParsedTotal.WithLabelValues(dialect, "ok").Inc()

	r.TablesExtractedTotal.Add(float64(stats.TablesExtracted))
	r.DuplicateTablesTotal.Add(float64(stats.Duplicates))
	r.ShapeHintMismatchesTotal.Add(float64(stats.ShapeHintMismatches))
	r.LinesScannedTotal.Add(float64(stats.LinesScanned))

	skipped := map[liberty.SkipReason]int{
		liberty.SkipBlankField:    stats.SkippedBlankField,
		liberty.SkipMinPulseWidth: stats.SkippedMinPulseWidth,
		liberty.SkipPower:         stats.SkippedPower,
	}
	for reason, n := range skipped {
		if n > 0 {
			r.TablesSkippedTotal.WithLabelValues(reason.String()).Add(float64(n))
		}
	}
}

// BeginFile marks a batch file as in flight. The returned func marks it done.
func (r *Registry) BeginFile() func() {
	r.BatchFilesInFlight.Inc()
	return r.BatchFilesInFlight.Dec
}

// RecordBatch records the wall time of a batch parse
func (r *Registry) RecordBatch(duration time.Duration) {
	r.BatchDuration.Observe(duration.Seconds())
}

// RecordExport records one export to a sink
func (r *Registry) RecordExport(sink string, rows int, bytes int64, duration time.Duration, err error) {
	r.ExportDuration.WithLabelValues(sink).Observe(duration.Seconds())
	if err != nil {
		r.ExportErrorsTotal.WithLabelValues(sink).Inc()
		return
	}
	r.ExportRowsTotal.WithLabelValues(sink).Add(float64(rows))
	if bytes > 0 {
		r.ExportBytesTotal.WithLabelValues(sink).Add(float64(bytes))
	}
}

// UpdateSystemMetrics refreshes the process gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
	r.MemorySysBytes.Set(float64(mem.Sys))
	r.GCCycles.Set(float64(mem.NumGC))
}

// WriteTextfile writes every metric in the text exposition format, for
// pickup by a node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
