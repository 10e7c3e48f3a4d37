package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captionlint_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "captionlint_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Upload Metrics
	DocumentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captionlint_document_uploads_total",
			Help: "Total number of caption documents uploaded",
		},
		[]string{"role"},
	)

	DocumentSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "captionlint_document_size_bytes",
			Help:    "Size of uploaded caption documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to 2MB
		},
	)

	// Run Metrics
	RunsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_runs_created_total",
			Help: "Total number of validation runs created",
		},
	)

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captionlint_validations_total",
			Help: "Total number of translated documents validated",
		},
		[]string{"result"},
	)

	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "captionlint_validation_duration_seconds",
			Help:    "Validation job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	JobsQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "captionlint_jobs_queue_depth",
			Help: "Number of validation jobs waiting in queue",
		},
	)

	// Finding Metrics
	TimecodeIssuesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_timecode_issues_total",
			Help: "Total number of timecode drift issues found",
		},
	)

	OverlapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_overlaps_total",
			Help: "Total number of documents with overlapping cues",
		},
	)

	LineCountMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_line_count_mismatches_total",
			Help: "Total number of documents with cue count mismatches",
		},
	)

	CueCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "captionlint_cue_count",
			Help:    "Number of cues per extracted document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"role"},
	)

	// Cache Metrics
	ReportCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_report_cache_hits_total",
			Help: "Total number of report cache hits",
		},
	)

	ReportCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "captionlint_report_cache_misses_total",
			Help: "Total number of report cache misses",
		},
	)
)
