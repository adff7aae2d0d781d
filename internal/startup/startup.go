package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"media-library/internal/config"
	"media-library/internal/logging"
	"media-library/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// PrintBanner prints the startup banner with build information.
func PrintBanner() {
	banner := `
------------------------------------------------------------
    __  ___        ___      __    _ __
   /  |/  /__ ____/ (_)__ _/ /   (_) /  _______ _______ __
  / /|_/ / -_) _  / / _ '/ /__/ / / _ \/ __/ _ '/ __/ // /
 /_/  /_/\__/\_,_/_/\_,_/____/_/_/_.__/_/  \_,_/_/  \_, /
                                                   /___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

// LogSystemInfo logs Go runtime and host details.
func LogSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// LogConfig logs the effective configuration after loading and validation.
func LogConfig(cfg *config.Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Port:              %d", cfg.Server.Port)
	logging.Info("  Metrics port:      %d", cfg.Server.MetricsPort)
	logging.Info("  Metrics enabled:   %v", cfg.Server.MetricsEnabled)
	logging.Info("  Shutdown timeout:  %v", cfg.Server.ShutdownTimeout)
	logging.Info("  Rate limit:        %.0f req/s (burst %d)", cfg.Server.RateLimit, cfg.Server.RateBurst)
	logging.Info("  Log level:         %s", cfg.Logging.Level)
	logging.Info("  Previews enabled:  %v", cfg.Previews.Enabled)
	logging.Info("  Video posters:     %v", cfg.Previews.VideoPosters)
	logging.Info("  Upload max size:   %d bytes", cfg.Uploads.MaxSize)
	logging.Info("")
}

// LogLibraries logs the configured library roots and checks each path.
// A missing root is a warning, not a fatal error; volumes may mount late.
func LogLibraries(libraries []config.LibraryConfig) {
	logging.Info("------------------------------------------------------------")
	logging.Info("LIBRARIES")
	logging.Info("------------------------------------------------------------")

	for _, lib := range libraries {
		info, err := os.Stat(lib.Path)
		switch {
		case err != nil:
			logging.Warn("  %-16s %s (not accessible: %v)", lib.Name, lib.Path, err)
		case !info.IsDir():
			logging.Warn("  %-16s %s (not a directory)", lib.Name, lib.Path)
		default:
			logging.Info("  %-16s %s", lib.Name, lib.Path)
		}
	}
	logging.Info("")
}

// SetupCacheDir creates the preview cache directory and verifies write
// access. Returns false if the directory is unusable, in which case preview
// generation should be disabled rather than failing every request.
func SetupCacheDir(path string) bool {
	logging.Debug("  Setting up preview cache directory: %s", path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create cache directory: %v", err)
		logging.Warn("    Previews will be disabled")
		return false
	}

	if err := TestWriteAccess(path); err != nil {
		logging.Warn("    Cache directory is not writable: %v", err)
		logging.Warn("    Previews will be disabled")
		return false
	}

	logging.Debug("    [OK] Cache directory ready")
	return true
}

// TestWriteAccess verifies that dir is writable by creating and removing a
// probe file.
func TestWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed, leftover probe file is cosmetic.
	}
	return nil
}

// LogPreviewInit logs preview subsystem initialization and checks FFmpeg
// when video posters are requested.
func LogPreviewInit(enabled, posters bool, ffmpegPath string) {
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if !enabled {
		logging.Info("  Previews disabled")
		logging.Info("  Default icons will be shown instead of thumbnails")
		logging.Info("")
		return
	}

	logging.Info("  [OK] Image thumbnails enabled")

	if !posters {
		logging.Info("  Video posters disabled")
		logging.Info("")
		return
	}

	if err := CheckFFmpeg(ffmpegPath); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Video posters will not be generated")
	} else {
		logging.Info("  [OK] FFmpeg is available, video posters enabled")
	}
	logging.Info("")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            int
	MetricsPort     int
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%d", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%d/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%d", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%d/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogMemoryConfig logs the GOMEMLIMIT configuration decided at startup.
func LogMemoryConfig(result memory.ConfigResult) {
	switch {
	case result.Configured && result.Source == "MEMORY_LIMIT":
		logging.Info("  Memory limit:    %s (%.0f%% of %s container limit)",
			formatBytesStartup(result.GoMemLimit),
			result.Ratio*100,
			formatBytesStartup(result.ContainerLimit))
	case result.Configured:
		logging.Info("  Memory limit:    %s (from GOMEMLIMIT)", formatBytesStartup(result.GoMemLimit))
	default:
		logging.Info("  Memory limit:    not configured")
	}
}

// formatBytesStartup formats bytes into a human-readable string
func formatBytesStartup(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// CheckFFmpeg verifies that the configured FFmpeg binary exists and runs.
func CheckFFmpeg(path string) error {
	if path == "" {
		path = "ffmpeg"
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return fmt.Errorf("ffmpeg not found at %q", path)
	}
	logging.Debug("  FFmpeg path: %s", resolved)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, resolved, "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}
