package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-library/internal/browse"
	"media-library/internal/config"
	"media-library/internal/fileops"
	"media-library/internal/filesystem"
	"media-library/internal/handlers"
	"media-library/internal/library"
	"media-library/internal/logging"
	"media-library/internal/memory"
	"media-library/internal/metrics"
	"media-library/internal/middleware"
	"media-library/internal/preview"
	"media-library/internal/startup"
	"media-library/internal/streaming"
	"media-library/internal/telemetry"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const statsInterval = 5 * time.Minute

func main() {
	startTime := time.Now()

	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Before any significant allocations.
	memResult := memory.ConfigureFromEnv()

	startup.PrintBanner()
	startup.LogSystemInfo()
	startup.LogMemoryConfig(memResult)

	cfg, err := config.Load(*configPath)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	if level, ok := logging.ParseLevel(cfg.Logging.Level); ok {
		logging.SetLevel(level)
	}

	startup.LogConfig(cfg)
	startup.LogLibraries(cfg.Libraries)

	ctx := context.Background()
	flushTelemetry, err := telemetry.Init(ctx, "media-library", startup.Version)
	if err != nil {
		logging.Warn("Telemetry init failed: %v", err)
		flushTelemetry = func(context.Context) error { return nil }
	}

	// A misconfigured library root should stop the server, not surface as
	// 404s at runtime.
	defs := make([]library.Definition, 0, len(cfg.Libraries))
	for _, lib := range cfg.Libraries {
		defs = append(defs, library.Definition{Name: lib.Name, Path: lib.Path, Icon: lib.Icon})
	}
	registry, err := library.NewRegistry(defs)
	if err != nil {
		startup.LogFatal("Library configuration error: %v", err)
	}
	resolver := library.NewResolver(registry)

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics(cfg.LibraryNames())

	// Filesystem metrics label operations by volume: one per library plus
	// the preview cache.
	volumes := make(map[string]string, len(cfg.Libraries)+1)
	for _, lib := range registry.Libraries() {
		volumes[lib.Name] = lib.Root
	}
	if cfg.Previews.Enabled {
		volumes["cache"] = cfg.Previews.CacheDir
	}
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes))
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	var previews *preview.Service
	if cfg.Previews.Enabled && startup.SetupCacheDir(cfg.Previews.CacheDir) {
		if err := preview.InitVips(); err != nil {
			logging.Warn("libvips unavailable, falling back to pure-Go decoding: %v", err)
		}
		previews, err = preview.NewService(preview.Config{
			CacheDir:     cfg.Previews.CacheDir,
			VideoPosters: cfg.Previews.VideoPosters,
			FFmpegPath:   cfg.Previews.FFmpegPath,
			MaxProcesses: cfg.Previews.MaxProcesses,
		}, monitor)
		if err != nil {
			startup.LogFatal("Preview service error: %v", err)
		}
	}
	startup.LogPreviewInit(previews != nil, previews != nil && previews.PostersEnabled(), cfg.Previews.FFmpegPath)

	engine := streaming.NewEngine(resolver)
	scanner := browse.NewScanner(resolver)
	files := fileops.NewManager(resolver, cfg.Uploads.MaxSize)

	collector := metrics.NewCollector(browse.NewStatsWalker(registry), statsInterval)
	collector.Start()

	h := handlers.New(registry, resolver, engine, scanner, files, previews)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router)

	handler := buildMiddlewareChain(router, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streams run as long as the client keeps reading
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsEnabled {
		metricsSrv = startMetricsServer(cfg.Server.MetricsPort)
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, monitor, flushTelemetry, cfg.Server.ShutdownTimeout, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Server.Port,
		MetricsPort:     cfg.Server.MetricsPort,
		MetricsEnabled:  cfg.Server.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func buildMiddlewareChain(router *mux.Router, cfg *config.Config) http.Handler {
	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.RequestsPerSecond = cfg.Server.RateLimit
	rateLimitConfig.Burst = cfg.Server.RateBurst

	var handler http.Handler = router
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)
	handler = middleware.Logger(middleware.DefaultLoggingConfig())(handler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.RateLimit(rateLimitConfig)(handler)
	handler = middleware.Recovery()(handler)
	return telemetry.WrapHandler(handler, "media-library")
}

// startMetricsServer runs the Prometheus scrape endpoint on its own
// listener so operational traffic never competes with media streams.
func startMetricsServer(port int) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, monitor *memory.Monitor, flushTelemetry func(context.Context) error, timeout time.Duration, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startup.LogShutdownStep("Stopping stats collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Stats collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Flushing telemetry")
	if err := flushTelemetry(ctx); err != nil {
		logging.Warn("Telemetry flush error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Telemetry flushed")
	}

	preview.ShutdownVips()

	startup.LogShutdownComplete()
}
