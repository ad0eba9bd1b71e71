package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pyimports_parse_seconds",
		Help:    "Time spent parsing a single source file.",
		Buckets: prometheus.DefBuckets,
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pyimports_scan_seconds",
		Help:    "Time spent on a full scan run.",
		Buckets: prometheus.DefBuckets,
	})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyimports_files_scanned_total",
		Help: "Total number of source files parsed.",
	})

	ImportsFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyimports_imports_found_total",
		Help: "Total number of import records extracted.",
	})

	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyimports_parse_errors_total",
		Help: "Total number of files that failed to parse.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyimports_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	TrackedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pyimports_tracked_files",
		Help: "Number of files in the current scan result set.",
	})

	TrackedImports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pyimports_tracked_imports",
		Help: "Number of import records in the current scan result set.",
	})
)
