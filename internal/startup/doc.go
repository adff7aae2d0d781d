// Package startup handles application initialization and startup/shutdown
// logging.
//
// Configuration itself lives in the config package; this package logs the
// effective configuration, validates runtime prerequisites (library roots,
// preview cache directory, FFmpeg), and provides consistent lifecycle log
// output.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [PrintBanner]: Startup banner with build information
//   - [LogSystemInfo]: Go runtime and host details
//   - [LogConfig]: Effective configuration after validation
//   - [LogLibraries]: Configured library roots and their accessibility
//   - [LogMemoryConfig]: GOMEMLIMIT configuration
//   - [LogPreviewInit]: Preview subsystem setup and FFmpeg availability
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
//
// # Example Usage
//
//	startup.PrintBanner()
//	startup.LogSystemInfo()
//
//	cfg, err := config.Load(configPath)
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogConfig(cfg)
//	startup.LogLibraries(cfg.Libraries)
//
//	// Start server...
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            cfg.Server.Port,
//	    MetricsPort:     cfg.Server.MetricsPort,
//	    MetricsEnabled:  cfg.Server.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
