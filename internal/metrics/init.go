package metrics

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup, after configuration is loaded, with the
// configured library names.
func InitializeMetrics(libraries []string) {
	// --- Path resolution outcomes ---
	for _, op := range []string{"resolve", "resolve_parent"} {
		for _, status := range []string{"success", "denied", "not_found", "unknown_library", "invalid_name", "error"} {
			PathResolutionsTotal.WithLabelValues(op, status)
		}
	}

	// --- Streaming outcomes ---
	for _, status := range []string{"full", "partial", "malformed", "not_satisfiable", "not_found", "aborted"} {
		StreamsTotal.WithLabelValues(status)
	}
	for _, form := range []string{"absent", "full", "open_ended", "suffix", "malformed", "not_satisfiable"} {
		RangeRequestsTotal.WithLabelValues(form)
	}

	// --- Preview generation ---
	for _, kind := range []string{"image", "video_poster"} {
		PreviewGenerationDuration.WithLabelValues(kind)
		for _, status := range []string{"success", "error", "timeout"} {
			PreviewGenerationsTotal.WithLabelValues(kind, status)
		}
	}

	// --- Subtitles ---
	SubtitleLookupsTotal.WithLabelValues("found")
	SubtitleLookupsTotal.WithLabelValues("missing")
	SubtitleConversionsTotal.WithLabelValues("success")
	SubtitleConversionsTotal.WithLabelValues("error")

	// --- File management ---
	for _, op := range []string{"create_folder", "delete", "rename", "move", "copy", "upload", "archive"} {
		FileOperationsTotal.WithLabelValues(op, "success")
		FileOperationsTotal.WithLabelValues(op, "error")
	}

	// --- Browse ---
	for _, op := range []string{"list", "stats"} {
		BrowseOperationsTotal.WithLabelValues(op, "success")
		BrowseOperationsTotal.WithLabelValues(op, "error")
		BrowseOperationDuration.WithLabelValues(op)
		BrowseItemsReturned.WithLabelValues(op)
	}

	// --- Filesystem metrics (per volume x operation) ---
	volumes := append([]string{"cache", "unknown"}, libraries...)
	fsOps := []string{"read", "write", "stat", "readdir"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	retryOps := []string{"stat", "open", "readdir", "write"}
	for _, op := range retryOps {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- Per-library content gauges ---
	for _, lib := range libraries {
		for _, t := range []string{"image", "video", "audio", "subtitle", "document", "archive", "other"} {
			LibraryFilesTotal.WithLabelValues(lib, t)
		}
		LibraryFoldersTotal.WithLabelValues(lib)
		LibrarySizeBytes.WithLabelValues(lib)
	}
}
