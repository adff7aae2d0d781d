package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Path resolution metrics
var (
	PathResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_path_resolutions_total",
			Help: "Total number of sandbox path resolutions",
		},
		[]string{"operation", "status"}, // operation: "resolve", "resolve_parent"
	)
)

// Streaming metrics
var (
	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_streams_total",
			Help: "Total number of streaming responses by outcome",
		},
		[]string{"status"}, // "full", "partial", "malformed", "not_satisfiable", "not_found", "aborted"
	)

	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_stream_bytes_total",
			Help: "Total number of body bytes delivered by the streaming engine",
		},
	)

	RangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_range_requests_total",
			Help: "Total number of parsed Range headers by form",
		},
		[]string{"form"}, // "absent", "full", "open_ended", "suffix", "malformed", "not_satisfiable"
	)

	OpenByteSources = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_open_byte_sources",
			Help: "Number of byte sources currently holding a file handle",
		},
	)

	StreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_library_stream_duration_seconds",
			Help:    "Wall-clock duration of streaming responses",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
)

// Preview cache metrics
var (
	PreviewCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_preview_cache_hits_total",
			Help: "Total number of preview cache hits",
		},
	)

	PreviewCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_preview_cache_misses_total",
			Help: "Total number of preview cache misses",
		},
	)

	PreviewGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_preview_generations_total",
			Help: "Total number of preview generations",
		},
		[]string{"kind", "status"}, // kind: "image", "video_poster"
	)

	PreviewGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_preview_generation_duration_seconds",
			Help:    "Preview generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	ExtractorProcessesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_extractor_processes_active",
			Help: "Number of frame-extraction processes currently running",
		},
	)

	ExtractorTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_extractor_timeouts_total",
			Help: "Total number of frame extractions killed on deadline",
		},
	)
)

// Subtitle metrics
var (
	SubtitleLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_subtitle_lookups_total",
			Help: "Total number of subtitle sidecar lookups",
		},
		[]string{"status"}, // "found", "missing"
	)

	SubtitleConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_subtitle_conversions_total",
			Help: "Total number of SRT to VTT conversions",
		},
		[]string{"status"},
	)
)

// File management metrics
var (
	FileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_file_operations_total",
			Help: "Total number of file management operations",
		},
		[]string{"operation", "status"}, // operation: "create_folder", "delete", "rename", "move", "copy", "upload", "archive"
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_upload_bytes_total",
			Help: "Total number of bytes accepted by uploads",
		},
	)
)

// Browse metrics
var (
	BrowseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_browse_operations_total",
			Help: "Total number of directory listing operations",
		},
		[]string{"operation", "status"},
	)

	BrowseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_browse_operation_duration_seconds",
			Help:    "Directory listing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	BrowseItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_browse_items_returned",
			Help:    "Number of items returned by directory listings",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)
)

// Library content metrics, set by the periodic collector
var (
	LibraryFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_files_total",
			Help: "Number of files per library by type",
		},
		[]string{"library", "type"},
	)

	LibraryFoldersTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_folders_total",
			Help: "Number of folders per library",
		},
		[]string{"library"},
	)

	LibrarySizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_size_bytes",
			Help: "Total size of files per library in bytes",
		},
		[]string{"library"},
	)
)

// Filesystem resilience metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_operation_errors_total",
			Help: "Total number of filesystem operation errors",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_memory_usage_ratio",
			Help: "Heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_memory_paused",
			Help: "Whether heavy processing is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_memory_forced_gc_total",
			Help: "Total number of garbage collections forced by the memory monitor",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
