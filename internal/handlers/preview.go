package handlers

import (
	"net/http"
	"strconv"

	"media-library/internal/logging"
)

// Preview serves a cached image thumbnail, generating it on first request.
// Query parameters w and h set the bounding box (default 200, capped at
// 1024). Generation failures are reported as 404 so broken source images
// degrade to the client's default icon.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	if h.previews == nil {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	libraryName, relativePath := pathVars(r)

	rp, err := h.resolver.Resolve(libraryName, relativePath)
	if err != nil || rp.IsDir() {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	// ImageThumbnail clamps the dimensions to the allowed range.
	width := parseDimension(r.URL.Query().Get("w"))
	height := parseDimension(r.URL.Query().Get("h"))

	artifact, err := h.previews.ImageThumbnail(r.Context(), rp.Absolute, width, height)
	if err != nil {
		logging.Debug("Thumbnail generation failed for %s: %v", rp.Absolute, err)
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	serveArtifact(w, r, artifact)
}

// Poster serves the cached poster frame for a video, extracting it on first
// request. Returns 404 when posters are disabled or extraction fails.
func (h *Handlers) Poster(w http.ResponseWriter, r *http.Request) {
	if h.previews == nil || !h.previews.PostersEnabled() {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	libraryName, relativePath := pathVars(r)

	rp, err := h.resolver.Resolve(libraryName, relativePath)
	if err != nil || rp.IsDir() {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	artifact, err := h.previews.VideoPoster(r.Context(), rp.Absolute)
	if err != nil {
		logging.Debug("Poster extraction failed for %s: %v", rp.Absolute, err)
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	serveArtifact(w, r, artifact)
}

// serveArtifact serves a cache artifact. Artifacts are content addressed,
// so clients may cache them for a day.
func serveArtifact(w http.ResponseWriter, r *http.Request, artifact string) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "max-age=86400")
	http.ServeFile(w, r, artifact)
}

func parseDimension(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
