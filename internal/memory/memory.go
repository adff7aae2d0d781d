package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// Config sets the water marks for the heap monitor, as fractions of the
// memory limit.
type Config struct {
	// Limit is the heap limit in bytes. 0 means use GOMEMLIMIT.
	Limit int64
	// HighWaterMark is where a pause ends once usage falls back under it.
	HighWaterMark float64
	// CriticalWaterMark is where preview generation pauses.
	CriticalWaterMark float64
	// CheckInterval is the sampling period.
	CheckInterval time.Duration
}

// DefaultConfig pauses at 85% of the limit and resumes under 70%.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage against the limit and gates preview generation
// when it runs hot. Poster extraction and image decoding are the only large
// allocators in the process, so pausing them through WaitIfPaused keeps
// streaming and browsing responsive under memory pressure.
type Monitor struct {
	cfg    Config
	limit  int64
	stop   chan struct{}
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

// NewMonitor creates a monitor over cfg. With no explicit limit and no
// GOMEMLIMIT, the monitor is inert and WaitIfPaused never blocks.
func NewMonitor(cfg Config) *Monitor {
	limit := cfg.Limit
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
			limit = l
			logging.Info("Memory monitor using GOMEMLIMIT: %s", formatBytes(limit))
		}
	}
	if limit == 0 {
		logging.Warn("No memory limit configured, preview generation is never paused")
	}

	return &Monitor{
		cfg:    cfg,
		limit:  limit,
		stop:   make(chan struct{}),
		resume: make(chan struct{}),
	}
}

// Start begins sampling. No-op when no limit is configured.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases any generator blocked in WaitIfPaused.
func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			m.observe(stats.Alloc)
		case <-m.stop:
			return
		}
	}
}

// observe applies one usage sample. Pausing triggers at the critical mark
// but resuming waits for usage to fall under the high water mark, so the
// gate does not flap around a single threshold.
func (m *Monitor) observe(alloc uint64) {
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case !m.paused && usage >= m.cfg.CriticalWaterMark:
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		logging.Warn("Heap at %.0f%% of limit, pausing preview generation", usage*100)
		go runtime.GC()
	case m.paused && usage < m.cfg.HighWaterMark:
		m.paused = false
		metrics.MemoryPaused.Set(0)
		logging.Info("Heap back at %.0f%% of limit, resuming preview generation", usage*100)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// WaitIfPaused blocks while generation is gated. Returns false only when the
// monitor is stopped mid-wait.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return true
	}
	resume := m.resume
	m.mu.Unlock()

	select {
	case <-resume:
		return true
	case <-m.stop:
		return false
	}
}

// IsPaused reports whether generation is currently gated.
func (m *Monitor) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}
