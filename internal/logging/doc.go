// Package logging provides a simple leveled logging interface for the
// media library server.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is seeded from the LOG_LEVEL environment variable and can be
// overridden once the configuration file has been loaded.
package logging
