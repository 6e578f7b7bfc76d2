package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initProcessMetrics registers the gauges refreshed by UpdateSystemMetrics
// before a textfile is written.
func (r *Registry) initProcessMetrics() {
	gauge := func(name, help string) prometheus.Gauge {
		return promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
			Namespace: "libcert",
			Subsystem: "process",
			Name:      name,
			Help:      help,
		})
	}

	r.UptimeSeconds = gauge("uptime_seconds", "Wall time of the run in seconds")
	r.GoRoutines = gauge("goroutines", "Goroutines alive when the run finished")
	r.MemoryAllocBytes = gauge("heap_alloc_bytes", "Bytes of allocated heap objects")
	r.MemorySysBytes = gauge("sys_bytes", "Bytes of memory obtained from the OS")
	r.GCCycles = gauge("gc_cycles", "Completed garbage collection cycles")
}
