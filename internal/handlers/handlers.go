package handlers

import (
	"net/http"
	"time"

	"media-library/internal/browse"
	"media-library/internal/fileops"
	"media-library/internal/library"
	"media-library/internal/preview"
	"media-library/internal/streaming"

	"github.com/gorilla/mux"
)

// Handlers holds the HTTP handlers and their service dependencies.
type Handlers struct {
	registry  *library.Registry
	resolver  *library.Resolver
	engine    *streaming.Engine
	scanner   *browse.Scanner
	files     *fileops.Manager
	previews  *preview.Service
	startTime time.Time
}

// New creates the handler set. previews may be nil when preview generation
// is disabled; the preview and poster endpoints then return 404.
func New(registry *library.Registry, resolver *library.Resolver, engine *streaming.Engine, scanner *browse.Scanner, files *fileops.Manager, previews *preview.Service) *Handlers {
	return &Handlers{
		registry:  registry,
		resolver:  resolver,
		engine:    engine,
		scanner:   scanner,
		files:     files,
		previews:  previews,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches all application routes to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/libraries", h.ListLibraries).Methods(http.MethodGet)

	api.HandleFunc("/browse/{library}", h.Browse).Methods(http.MethodGet)
	api.HandleFunc("/browse/{library}/{path:.*}", h.Browse).Methods(http.MethodGet)

	api.HandleFunc("/stream/{library}/{path:.*}", h.Stream).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/download/{library}/{path:.*}", h.Download).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/archive/{library}", h.Archive).Methods(http.MethodGet)
	api.HandleFunc("/archive/{library}/{path:.*}", h.Archive).Methods(http.MethodGet)

	api.HandleFunc("/preview/{library}/{path:.*}", h.Preview).Methods(http.MethodGet)
	api.HandleFunc("/poster/{library}/{path:.*}", h.Poster).Methods(http.MethodGet)
	api.HandleFunc("/subtitles/{library}/{path:.*}", h.Subtitles).Methods(http.MethodGet)

	api.HandleFunc("/folders/{library}/{path:.*}", h.CreateFolder).Methods(http.MethodPost)
	api.HandleFunc("/files/{library}/{path:.*}", h.DeleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/rename/{library}/{path:.*}", h.Rename).Methods(http.MethodPost)
	api.HandleFunc("/move/{library}/{path:.*}", h.Move).Methods(http.MethodPost)
	api.HandleFunc("/copy/{library}/{path:.*}", h.Copy).Methods(http.MethodPost)
	api.HandleFunc("/upload/{library}", h.Upload).Methods(http.MethodPost)
	api.HandleFunc("/upload/{library}/{path:.*}", h.Upload).Methods(http.MethodPost)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}

// pathVars extracts the library name and library-relative path from the
// request route. The path variable is optional; root-of-library routes leave
// it empty.
func pathVars(r *http.Request) (string, string) {
	vars := mux.Vars(r)
	return vars["library"], vars["path"]
}
