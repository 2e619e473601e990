package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_relay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clip_relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clip_relay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Pipeline metrics
var (
	PipelineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_relay_pipeline_requests_total",
			Help: "Total number of relay pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clip_relay_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	PipelineInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clip_relay_pipeline_in_flight",
			Help: "Number of pipeline runs currently executing",
		},
	)

	DownloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clip_relay_download_bytes_total",
			Help: "Total bytes of raw media staged by the downloader",
		},
	)

	TranscodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_relay_transcodes_total",
			Help: "Total number of size-constraint decisions by action",
		},
		[]string{"action"}, // "promoted" or "reencoded"
	)
)

// Delivery metrics
var (
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_relay_deliveries_total",
			Help: "Total number of webhook delivery attempts by status",
		},
		[]string{"status"},
	)
)

// Sweeper metrics
var (
	SweeperFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clip_relay_sweeper_files_removed_total",
			Help: "Total number of staged files removed by the cleanup sweeper",
		},
	)
)

// History store metrics
var (
	HistoryQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_relay_history_queries_total",
			Help: "Total number of request-history store operations",
		},
		[]string{"operation", "status"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clip_relay_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
