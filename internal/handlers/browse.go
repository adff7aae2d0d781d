package handlers

import (
	"net/http"

	"media-library/internal/mediatypes"
)

// LibraryInfo is one entry in the library index response.
type LibraryInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ListLibraries returns the configured libraries for the client's home view.
func (h *Handlers) ListLibraries(w http.ResponseWriter, _ *http.Request) {
	libs := h.registry.Libraries()

	response := make([]LibraryInfo, 0, len(libs))
	for _, lib := range libs {
		response = append(response, LibraryInfo{Name: lib.Name, Icon: lib.Icon})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// Browse returns a live directory listing. Query parameters: sort
// (name|date|size|type), order (asc|desc), filter (entry type). Unknown
// values fall back to the defaults rather than erroring.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	libraryName, relativePath := pathVars(r)

	sortField := parseSortField(r.URL.Query().Get("sort"))
	sortOrder := parseSortOrder(r.URL.Query().Get("order"))
	filterType := r.URL.Query().Get("filter")

	listing, err := h.scanner.List(libraryName, relativePath, sortField, sortOrder, filterType)
	if err != nil {
		writeOpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, listing)
}

func parseSortField(raw string) mediatypes.SortField {
	switch mediatypes.SortField(raw) {
	case mediatypes.SortByDate, mediatypes.SortBySize, mediatypes.SortByType:
		return mediatypes.SortField(raw)
	default:
		return mediatypes.SortByName
	}
}

func parseSortOrder(raw string) mediatypes.SortOrder {
	if mediatypes.SortOrder(raw) == mediatypes.SortDesc {
		return mediatypes.SortDesc
	}
	return mediatypes.SortAsc
}
