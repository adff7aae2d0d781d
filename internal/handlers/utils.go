package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-library/internal/fileops"
	"media-library/internal/library"
	"media-library/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
// The message must never contain filesystem paths.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeOpError maps service-layer errors to JSON error responses. Unknown
// errors become an opaque 500; the detail goes to the server log only.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrAccessDenied):
		writeJSONError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, library.ErrInvalidName):
		writeJSONError(w, "Invalid name", http.StatusBadRequest)
	case errors.Is(err, library.ErrLibraryNotFound), errors.Is(err, library.ErrNotFound):
		writeJSONError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, fileops.ErrExists):
		writeJSONError(w, "Already exists", http.StatusConflict)
	case errors.Is(err, fileops.ErrTooLarge):
		writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, fileops.ErrCrossDeviceDir):
		writeJSONError(w, "Cannot move directory across devices", http.StatusBadRequest)
	default:
		logging.Error("Unexpected handler error: %v", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
