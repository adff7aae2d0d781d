package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count of multiplier workers per available CPU,
// never less than 1 and never more than limit (0 for no cap). A positive
// PREVIEW_WORKERS environment variable overrides the computed value but is
// still capped.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("PREVIEW_WORKERS"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			return capped(n, limit)
		}
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	return capped(n, limit)
}

func capped(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForCPU sizes a pool for CPU-bound work, one worker per CPU.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO sizes a pool for I/O-bound work, two workers per CPU.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed sizes a pool for mixed work, 1.5 workers per CPU.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
