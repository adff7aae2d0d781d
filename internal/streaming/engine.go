package streaming

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"media-library/internal/library"
	"media-library/internal/logging"
	"media-library/internal/mediatypes"
	"media-library/internal/metrics"
)

// Engine serves full and partial file content over HTTP. It owns the
// resolve -> parse range -> open source pipeline; handlers hand it the raw
// library name, relative path, and request and it writes the complete
// response.
type Engine struct {
	resolver     *library.Resolver
	writerConfig TimeoutWriterConfig
}

// NewEngine creates an Engine over the given resolver.
func NewEngine(resolver *library.Resolver) *Engine {
	return &Engine{
		resolver:     resolver,
		writerConfig: DefaultTimeoutWriterConfig(),
	}
}

// ServeFile streams the file at (libraryName, relativePath), honoring the
// request's Range header. Status codes: 200 full content, 206 partial,
// 400 malformed range, 404 not found, 403 sandbox violation, 416 range not
// satisfiable. Client-visible output never contains filesystem paths.
func (e *Engine) ServeFile(w http.ResponseWriter, r *http.Request, libraryName, relativePath string) {
	e.serve(w, r, libraryName, relativePath, false)
}

// ServeDownload is ServeFile with a Content-Disposition attachment header,
// used by the download endpoint. Range is still honored, so downloads are
// resumable.
func (e *Engine) ServeDownload(w http.ResponseWriter, r *http.Request, libraryName, relativePath string) {
	e.serve(w, r, libraryName, relativePath, true)
}

func (e *Engine) serve(w http.ResponseWriter, r *http.Request, libraryName, relativePath string, attachment bool) {
	start := time.Now()

	rp, err := e.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		writeResolveError(w, err)
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		return
	}
	if rp.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		return
	}

	fileSize := rp.Info.Size()
	ext := strings.ToLower(filepath.Ext(rp.Absolute))
	contentType := mediatypes.ResolveMimeType(rp.Absolute, ext)

	// Advertised on every response so players know seeking works.
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)
	if attachment {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", filepath.Base(rp.Absolute)))
	}

	rangeHeader := r.Header.Get("Range")
	spec, err := ParseRange(rangeHeader, fileSize)
	switch {
	case errors.Is(err, ErrRangeMalformed):
		metrics.RangeRequestsTotal.WithLabelValues("malformed").Inc()
		metrics.StreamsTotal.WithLabelValues("malformed").Inc()
		http.Error(w, "Malformed range", http.StatusBadRequest)
		return
	case errors.Is(err, ErrRangeNotSatisfiable):
		metrics.RangeRequestsTotal.WithLabelValues("not_satisfiable").Inc()
		metrics.StreamsTotal.WithLabelValues("not_satisfiable").Inc()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	var offset, length int64
	var status int
	var outcome string
	if spec == nil {
		metrics.RangeRequestsTotal.WithLabelValues("absent").Inc()
		offset, length = 0, fileSize
		status, outcome = http.StatusOK, "full"
	} else {
		metrics.RangeRequestsTotal.WithLabelValues(rangeForm(rangeHeader, spec)).Inc()
		offset, length = spec.Start, spec.Length()
		status, outcome = http.StatusPartialContent, "partial"
		w.Header().Set("Content-Range", spec.ContentRange())
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		metrics.StreamsTotal.WithLabelValues(outcome).Inc()
		return
	}

	// Open before committing to a status line. An open failure after a
	// successful resolve (racing delete, permission flip) is reported as
	// 404, indistinguishable from a missing file to an unauthenticated
	// client, and logged with the resolved path for diagnosis.
	src, err := NewSource(rp.Absolute, offset, length)
	if err != nil {
		logging.Error("Failed to open %s for streaming: %v", rp.Absolute, err)
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		w.Header().Del("Content-Length")
		w.Header().Del("Content-Range")
		w.Header().Del("Cache-Control")
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer src.Close()

	w.WriteHeader(status)

	written, err := copyWithTimeout(r.Context(), w, src, e.writerConfig)
	metrics.StreamBytesTotal.Add(float64(written))
	metrics.StreamDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		// Disconnects mid-stream are routine for seeking players; the
		// client retries with a fresh range request. Never retried here.
		logging.Debug("Stream aborted for %s after %d bytes: %v", rp.Absolute, written, err)
		metrics.StreamsTotal.WithLabelValues("aborted").Inc()
		return
	}
	metrics.StreamsTotal.WithLabelValues(outcome).Inc()
}

// Stat resolves a path and returns its size without serving it. Used by
// handlers that need existence checks with engine-identical error mapping.
func (e *Engine) Stat(libraryName, relativePath string) (*library.ResolvedPath, error) {
	return e.resolver.Resolve(libraryName, relativePath)
}

// rangeForm classifies a parsed range for metrics.
func rangeForm(header string, spec *RangeSpec) string {
	if spec.OpenEnded {
		return "open_ended"
	}
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "bytes="))
	if strings.HasPrefix(trimmed, "-") {
		return "suffix"
	}
	return "full"
}

// writeResolveError translates resolver failures to HTTP statuses without
// leaking the resolved path or the reason.
func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrAccessDenied), errors.Is(err, library.ErrInvalidName):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
