package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"media-library/internal/logging"
	"media-library/internal/subtitles"
)

// Subtitles probes for a subtitle sidecar next to the requested video and
// serves it. WebVTT passes through verbatim, SRT is converted to VTT, and
// ASS/SSA are served as plain text for the client to handle. 404 when no
// sidecar exists.
func (h *Handlers) Subtitles(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	rp, err := h.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		writeOpError(w, err)
		return
	}
	if rp.IsDir() {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	sidecar, ok := subtitles.Locate(rp.Absolute)
	if !ok {
		writeJSONError(w, "No subtitles found", http.StatusNotFound)
		return
	}

	// The sidecar can itself be a symlink, so it gets the same sandbox
	// resolution as the video before anything is read from it.
	sidecarRel := strings.TrimSuffix(rp.Relative, path.Ext(rp.Relative)) + filepath.Ext(sidecar.Path)
	resolved, err := h.resolver.Resolve(libraryName, sidecarRel)
	if err != nil {
		writeJSONError(w, "No subtitles found", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(resolved.Absolute)
	if err != nil {
		logging.Error("Failed to read subtitle sidecar %s: %v", resolved.Absolute, err)
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	if sidecar.Format == subtitles.FormatSRT {
		data = subtitles.SRTToVTT(data)
	}

	w.Header().Set("Content-Type", sidecar.MimeType())
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write subtitle response: %v", err)
	}
}
