package metrics

import (
	"time"

	"media-library/internal/logging"
)

// LibraryStats holds the walked content statistics for a single library.
type LibraryStats struct {
	Library   string
	Files     map[string]int // file count by type label
	Folders   int
	SizeBytes int64
}

// StatsProvider produces per-library content statistics. Implemented by the
// browse package's stats walker.
type StatsProvider interface {
	CollectStats() []LibraryStats
}

// Collector periodically collects and updates the per-library gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	for _, stats := range c.statsProvider.CollectStats() {
		for fileType, count := range stats.Files {
			LibraryFilesTotal.WithLabelValues(stats.Library, fileType).Set(float64(count))
		}
		LibraryFoldersTotal.WithLabelValues(stats.Library).Set(float64(stats.Folders))
		LibrarySizeBytes.WithLabelValues(stats.Library).Set(float64(stats.SizeBytes))

		logging.Debug("Metrics collected for library %q: folders=%d, size=%d",
			stats.Library, stats.Folders, stats.SizeBytes)
	}
}
