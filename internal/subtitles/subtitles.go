package subtitles

import (
	"os"
	"path/filepath"
	"strings"

	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// Format identifies a subtitle sidecar format.
type Format string

const (
	// FormatVTT is WebVTT, served verbatim.
	FormatVTT Format = "vtt"
	// FormatSRT is SubRip, converted to VTT before serving.
	FormatSRT Format = "srt"
	// FormatASS is Advanced SubStation Alpha.
	FormatASS Format = "ass"
	// FormatSSA is SubStation Alpha.
	FormatSSA Format = "ssa"
)

// probeOrder lists sidecar extensions by preference. VTT wins because it
// needs no conversion.
var probeOrder = []struct {
	ext    string
	format Format
}{
	{".vtt", FormatVTT},
	{".srt", FormatSRT},
	{".ass", FormatASS},
	{".ssa", FormatSSA},
}

// Sidecar is a located subtitle file next to a video.
type Sidecar struct {
	Path   string
	Format Format
}

// Locate probes for a subtitle sidecar next to the given video file: the
// video's basename with each known subtitle extension, in preference order.
// The probe follows symlinks, so a located sidecar may itself be a link
// pointing anywhere; callers that serve the file must resolve the returned
// path through the library sandbox first.
func Locate(videoPath string) (*Sidecar, bool) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))

	for _, probe := range probeOrder {
		candidate := base + probe.ext
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		logging.Debug("Subtitle sidecar found: %s", candidate)
		metrics.SubtitleLookupsTotal.WithLabelValues("found").Inc()
		return &Sidecar{Path: candidate, Format: probe.format}, true
	}

	metrics.SubtitleLookupsTotal.WithLabelValues("missing").Inc()
	return nil, false
}

// MimeType returns the Content-Type the sidecar is served with. SRT reports
// text/vtt because it is converted before serving.
func (s *Sidecar) MimeType() string {
	switch s.Format {
	case FormatVTT, FormatSRT:
		return "text/vtt"
	default:
		return "text/plain"
	}
}
