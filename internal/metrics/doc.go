// Package metrics declares the Prometheus metrics exported by the media
// library server and the periodic collector that keeps the per-library
// content gauges current.
//
// All metrics use the media_library_ prefix and are registered with the
// default registry via promauto at package load. InitializeMetrics
// pre-populates the known label combinations so that counters appear in the
// first scrape instead of on first use.
//
// The package also provides the filesystem.Observer implementation that
// records retry and ESTALE metrics for the filesystem package; the interface
// indirection exists to keep filesystem free of a metrics import.
package metrics
