package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-library/internal/logging"
)

// DefaultRatio is the share of the container memory limit handed to the Go
// heap. The remainder stays free for ffmpeg processes, libvips buffers, and
// goroutine stacks, none of which the runtime accounts for.
const DefaultRatio = 0.85

// ConfigResult records how the heap limit was decided, for startup logging.
type ConfigResult struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv derives GOMEMLIMIT from the container memory limit. An
// explicit GOMEMLIMIT wins; otherwise MEMORY_LIMIT (bytes, typically injected
// through the downward API) scaled by MEMORY_RATIO is applied. Runs in main
// before the first large allocation.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := ConfigResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	env := os.Getenv("MEMORY_LIMIT")
	if env == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving GOMEMLIMIT unconfigured")
		return ConfigResult{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(env, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring unusable MEMORY_LIMIT %q", env)
		return ConfigResult{Source: "none"}
	}

	ratio := ratioFromEnv()
	goLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		formatBytes(goLimit), ratio*100, formatBytes(containerLimit))

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func ratioFromEnv() float64 {
	env := os.Getenv("MEMORY_RATIO")
	if env == "" {
		return DefaultRatio
	}
	ratio, err := strconv.ParseFloat(env, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("Ignoring MEMORY_RATIO %q outside (0, 1], using %.2f", env, DefaultRatio)
		return DefaultRatio
	}
	return ratio
}

func formatBytes(b int64) string {
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
