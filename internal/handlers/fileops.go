package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"media-library/internal/logging"
)

// renameRequest is the body for POST /api/rename.
type renameRequest struct {
	NewName string `json:"newName"`
}

// transferRequest is the body for POST /api/move and /api/copy.
// Destination is a library-relative directory path.
type transferRequest struct {
	Destination string `json:"destination"`
}

// maxBodySize caps JSON request bodies for the file operation endpoints.
const maxBodySize = 4096

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// CreateFolder creates a directory at the requested path. 409 if something
// already exists there.
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	if err := h.files.CreateFolder(libraryName, relativePath); err != nil {
		writeOpError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSONStatus(w, "created")
}

// DeleteFile removes a file or directory tree. Deleting a library root is
// forbidden.
func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	if err := h.files.Delete(libraryName, relativePath); err != nil {
		writeOpError(w, err)
		return
	}

	writeJSONStatus(w, "deleted")
}

// Rename renames a file or directory in place. The new name must be a bare
// base name.
func (h *Handlers) Rename(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	var req renameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewName == "" {
		writeJSONError(w, "Missing newName", http.StatusBadRequest)
		return
	}

	if err := h.files.Rename(libraryName, relativePath, req.NewName); err != nil {
		writeOpError(w, err)
		return
	}

	writeJSONStatus(w, "renamed")
}

// Move relocates a file or directory to another directory in the same
// library.
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.files.Move(libraryName, relativePath, req.Destination); err != nil {
		writeOpError(w, err)
		return
	}

	writeJSONStatus(w, "moved")
}

// Copy duplicates a file into another directory in the same library.
// Directories are not copied.
func (h *Handlers) Copy(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.files.Copy(libraryName, relativePath, req.Destination); err != nil {
		writeOpError(w, err)
		return
	}

	writeJSONStatus(w, "copied")
}

// uploadResponse reports a completed upload.
type uploadResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
}

// Upload accepts a multipart upload into the requested directory. The part
// filename must be a bare base name, the write is atomic, and existing
// files are never overwritten. The body is streamed; large files never land
// in memory.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	libraryName, dirPath := pathVars(r)

	reader, err := r.MultipartReader()
	if err != nil {
		writeJSONError(w, "Expected multipart request", http.StatusBadRequest)
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeJSONError(w, "Malformed multipart request", http.StatusBadRequest)
			return
		}

		filename := part.FileName()
		if part.FormName() != "file" || filename == "" {
			part.Close()
			continue
		}

		written, err := h.files.Upload(libraryName, dirPath, filename, part)
		part.Close()
		if err != nil {
			writeOpError(w, err)
			return
		}

		logging.Info("Uploaded %s (%d bytes) to library %q", filename, written, libraryName)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, uploadResponse{Status: "uploaded", Name: filename, Size: written})
		return
	}

	writeJSONError(w, "Missing file part", http.StatusBadRequest)
}
