package handlers

import (
	"fmt"
	"net/http"
	"path"

	"media-library/internal/logging"
)

// Stream serves file content with byte-range support, delegating to the
// streaming engine.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)
	h.engine.ServeFile(w, r, libraryName, relativePath)
}

// Download serves file content as an attachment. Range is honored, so
// interrupted downloads can resume.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)
	h.engine.ServeDownload(w, r, libraryName, relativePath)
}

// Archive streams a ZIP of the requested directory. The archive is built on
// the fly; nothing touches disk and there is no Content-Length. The target
// is resolved before any header goes out so missing directories still get a
// clean 404.
func (h *Handlers) Archive(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	rp, err := h.resolver.Resolve(libraryName, relativePath)
	if err != nil {
		writeOpError(w, err)
		return
	}
	if !rp.IsDir() {
		writeJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	archiveName := path.Base(relativePath)
	if archiveName == "." || archiveName == "/" || archiveName == "" {
		archiveName = libraryName
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName+".zip"))

	if err := h.files.WriteArchive(w, libraryName, relativePath); err != nil {
		// Headers are already on the wire; nothing to send but a log.
		logging.Error("Archive of library %q failed: %v", libraryName, err)
	}
}
