package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"media-library/internal/logging"
	"media-library/internal/memory"
	"media-library/internal/metrics"
	"media-library/internal/workers"

	"golang.org/x/sync/semaphore"
)

// ExtractTimeout is the wall-clock deadline for a single frame extraction.
// Extraction normally completes in well under a second; anything that runs
// this long is stuck on a damaged container and gets killed.
const ExtractTimeout = 30 * time.Second

// PosterWidth is the fixed output width for poster frames; height follows
// the source aspect ratio.
const PosterWidth = 320

// SeekOffset is where in the video the poster frame is taken from. The
// first frames of most videos are black or a studio card.
const SeekOffset = "00:00:05"

// VideoFrameExtractor produces poster frames by running an external ffmpeg
// process. Concurrent extractions are bounded by a weighted semaphore sized
// to the CPU count, and each process is killed after ExtractTimeout.
type VideoFrameExtractor struct {
	ffmpegPath string
	monitor    *memory.Monitor
	slots      *semaphore.Weighted
}

// NewVideoFrameExtractor creates an extractor using the given ffmpeg binary.
// maxProcesses caps concurrent extractions; 0 sizes it from the CPU count.
// monitor may be nil.
func NewVideoFrameExtractor(ffmpegPath string, maxProcesses int, monitor *memory.Monitor) *VideoFrameExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if maxProcesses <= 0 {
		maxProcesses = workers.ForCPU(8)
	}
	logging.Debug("Frame extractor: %s, max %d concurrent processes", ffmpegPath, maxProcesses)
	return &VideoFrameExtractor{
		ffmpegPath: ffmpegPath,
		monitor:    monitor,
		slots:      semaphore.NewWeighted(int64(maxProcesses)),
	}
}

// Available reports whether the configured ffmpeg binary can be found.
func (e *VideoFrameExtractor) Available() bool {
	_, err := exec.LookPath(e.ffmpegPath)
	return err == nil
}

// Extract writes a poster frame for src to dst as JPEG. The output format
// follows dst's extension.
func (e *VideoFrameExtractor) Extract(ctx context.Context, src, dst string) error {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.slots.Release(1)

	if e.monitor != nil {
		e.monitor.WaitIfPaused()
	}

	return e.runFFmpeg(ctx, src, dst)
}

func (e *VideoFrameExtractor) runFFmpeg(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", src,
		"-ss", SeekOffset,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", PosterWidth),
		"-y", dst,
	)

	// ffmpeg chatters on stderr proportionally to input size; the pipe must
	// be drained continuously or the process blocks on a full buffer and
	// rides out the whole deadline.
	output, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	metrics.ExtractorProcessesActive.Inc()
	defer metrics.ExtractorProcessesActive.Dec()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", e.ffmpegPath, err)
	}

	combined, _ := io.ReadAll(output)
	err = cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		metrics.ExtractorTimeoutsTotal.Inc()
		logging.Warn("Frame extraction killed after %v: %s", ExtractTimeout, src)
		return fmt.Errorf("frame extraction timed out after %v", ExtractTimeout)
	}
	if err != nil {
		logging.Debug("ffmpeg failed for %s: %v, output: %s", src, err, truncateOutput(combined))
		return fmt.Errorf("frame extraction failed: %w", err)
	}

	// ffmpeg exits 0 on some inputs it could not actually decode a frame
	// from; the output file is the ground truth.
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		logging.Debug("ffmpeg exited cleanly but produced no output for %s: %s", src, truncateOutput(combined))
		return fmt.Errorf("frame extraction produced no output")
	}

	return nil
}

func truncateOutput(out []byte) string {
	const max = 2048
	if len(out) > max {
		return string(out[:max]) + "...(truncated)"
	}
	return string(out)
}
