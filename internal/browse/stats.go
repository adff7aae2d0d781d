package browse

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"media-library/internal/library"
	"media-library/internal/logging"
	"media-library/internal/mediatypes"
	"media-library/internal/metrics"
	"media-library/internal/workers"

	"golang.org/x/sync/semaphore"
)

// StatsWalker walks library roots to produce per-library content statistics
// for the metrics collector. Walks of distinct libraries run in parallel,
// bounded by an I/O-sized semaphore.
type StatsWalker struct {
	registry *library.Registry
	slots    *semaphore.Weighted
}

// NewStatsWalker creates a StatsWalker over the given registry.
func NewStatsWalker(registry *library.Registry) *StatsWalker {
	return &StatsWalker{
		registry: registry,
		slots:    semaphore.NewWeighted(int64(workers.ForIO(8))),
	}
}

// CollectStats implements metrics.StatsProvider.
func (w *StatsWalker) CollectStats() []metrics.LibraryStats {
	libs := w.registry.Libraries()
	results := make([]metrics.LibraryStats, len(libs))

	var wg sync.WaitGroup
	for i, lib := range libs {
		wg.Add(1)
		go func(i int, lib library.Library) {
			defer wg.Done()
			if err := w.slots.Acquire(context.Background(), 1); err != nil {
				return
			}
			defer w.slots.Release(1)
			results[i] = walkLibrary(lib)
		}(i, lib)
	}
	wg.Wait()

	return results
}

func walkLibrary(lib library.Library) metrics.LibraryStats {
	stats := metrics.LibraryStats{
		Library: lib.Name,
		Files:   make(map[string]int),
	}

	err := filepath.WalkDir(lib.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal; the rest of the
			// library still gets counted.
			logging.Debug("Stats walk error under %s: %v", lib.Name, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != lib.Root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != lib.Root {
				stats.Folders++
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		stats.Files[string(mediatypes.GetFileType(ext))]++
		if info, err := d.Info(); err == nil {
			stats.SizeBytes += info.Size()
		}
		return nil
	})
	if err != nil {
		logging.Warn("Stats walk failed for library %q: %v", lib.Name, err)
	}

	return stats
}
