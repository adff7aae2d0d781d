package subtitles

import (
	"strings"

	"media-library/internal/metrics"
)

// SRTToVTT converts SubRip subtitle text to WebVTT. The conversion prepends
// the WEBVTT header, drops per-cue sequence numbers, and rewrites the comma
// decimal separators in timestamp lines to periods. Cue text passes through
// verbatim, including styling tags.
func SRTToVTT(src []byte) []byte {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")

	var out strings.Builder
	out.Grow(len(text) + 16)
	out.WriteString("WEBVTT\n\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		// A bare cue number directly above a timestamp line is SRT
		// sequencing; VTT has no use for it. A numeric line anywhere else is
		// cue text and passes through.
		if isSequenceNumber(line) && i+1 < len(lines) && isTimestampLine(lines[i+1]) {
			continue
		}

		if isTimestampLine(line) {
			line = strings.ReplaceAll(line, ",", ".")
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}

	metrics.SubtitleConversionsTotal.WithLabelValues("success").Inc()
	return []byte(out.String())
}

func isSequenceNumber(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isTimestampLine(line string) bool {
	return strings.Contains(line, "-->")
}
