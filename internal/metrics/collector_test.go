package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStatsProvider struct {
	stats []LibraryStats
}

func (f *fakeStatsProvider) CollectStats() []LibraryStats {
	return f.stats
}

func TestCollectorUpdatesLibraryGauges(t *testing.T) {
	provider := &fakeStatsProvider{
		stats: []LibraryStats{
			{
				Library:   "movies",
				Files:     map[string]int{"video": 12, "image": 3},
				Folders:   4,
				SizeBytes: 1 << 30,
			},
		},
	}

	c := NewCollector(provider, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(LibraryFilesTotal.WithLabelValues("movies", "video")); got != 12 {
		t.Errorf("LibraryFilesTotal{movies,video} = %v, want 12", got)
	}
	if got := testutil.ToFloat64(LibraryFoldersTotal.WithLabelValues("movies")); got != 4 {
		t.Errorf("LibraryFoldersTotal{movies} = %v, want 4", got)
	}
	if got := testutil.ToFloat64(LibrarySizeBytes.WithLabelValues("movies")); got != float64(1<<30) {
		t.Errorf("LibrarySizeBytes{movies} = %v, want %v", got, 1<<30)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	// Must not panic.
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &fakeStatsProvider{
		stats: []LibraryStats{{Library: "music", Files: map[string]int{"audio": 1}}},
	}

	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	if got := testutil.ToFloat64(LibraryFilesTotal.WithLabelValues("music", "audio")); got != 1 {
		t.Errorf("LibraryFilesTotal{music,audio} = %v, want 1", got)
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics([]string{"movies", "music"})

	// Pre-populated counters exist at zero without ever being incremented.
	if got := testutil.ToFloat64(PathResolutionsTotal.WithLabelValues("resolve", "denied")); got != 0 {
		t.Errorf("PathResolutionsTotal{resolve,denied} = %v, want 0", got)
	}
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "movies")); got != 0 {
		t.Errorf("FilesystemStaleErrors{open,movies} = %v, want 0", got)
	}
}

func TestFilesystemObserverRecords(t *testing.T) {
	o := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("stat", "cache"))
	o.ObserveRetryAttempt("stat", "cache")
	after := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("stat", "cache"))
	if after != before+1 {
		t.Errorf("retry attempts = %v, want %v", after, before+1)
	}

	staleBefore := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "cache"))
	o.ObserveStaleError("open", "cache")
	staleAfter := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "cache"))
	if staleAfter != staleBefore+1 {
		t.Errorf("stale errors = %v, want %v", staleAfter, staleBefore+1)
	}
}
