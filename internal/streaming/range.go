package streaming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxChunkSize caps the length served for an open-ended range request
// (bytes=N-). Seek-capable players issue follow-up range requests for
// subsequent chunks, so capping bounds memory and I/O per request without
// breaking playback.
const MaxChunkSize = 5 * 1024 * 1024

// Sentinel errors for Range header parsing.
var (
	// ErrRangeMalformed indicates a Range header that could not be parsed.
	// Callers respond 400.
	ErrRangeMalformed = errors.New("malformed range header")

	// ErrRangeNotSatisfiable indicates a syntactically valid range that lies
	// outside the file. Callers respond 416 with Content-Range: bytes */size.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// RangeSpec is a validated byte interval within a file. Start and End are
// inclusive offsets, 0 <= Start <= End < TotalSize.
type RangeSpec struct {
	Start     int64
	End       int64
	TotalSize int64
	// OpenEnded records that the client asked for bytes=N- and the response
	// was capped at MaxChunkSize rather than running to end of file.
	OpenEnded bool
}

// Length returns the number of bytes in the interval.
func (s *RangeSpec) Length() int64 {
	return s.End - s.Start + 1
}

// ContentRange formats the Content-Range header value for a 206 response.
func (s *RangeSpec) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", s.Start, s.End, s.TotalSize)
}

// ParseRange interprets an HTTP Range header against a known file size.
// An absent or empty header returns (nil, nil): the caller serves the whole
// file. Multiple comma-separated ranges are accepted syntactically but only
// the first is honored. Suffix ranges (bytes=-N) address the final N bytes.
// Open-ended ranges (bytes=N-) are capped at MaxChunkSize.
func ParseRange(header string, fileSize int64) (*RangeSpec, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	lower := strings.ToLower(header)
	if !strings.HasPrefix(lower, "bytes=") {
		return nil, ErrRangeMalformed
	}

	spec := strings.TrimSpace(header[len("bytes="):])
	// Multi-range responses are not supported; honor the first range only.
	if idx := strings.Index(spec, ","); idx >= 0 {
		spec = strings.TrimSpace(spec[:idx])
	}
	if spec == "" {
		return nil, ErrRangeMalformed
	}

	dash := strings.Index(spec, "-")
	if dash < 0 {
		return nil, ErrRangeMalformed
	}

	startStr := strings.TrimSpace(spec[:dash])
	endStr := strings.TrimSpace(spec[dash+1:])

	if startStr == "" {
		// Suffix form: bytes=-N addresses the last N bytes.
		suffix, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || suffix < 0 {
			return nil, ErrRangeMalformed
		}
		if suffix == 0 || fileSize == 0 {
			return nil, ErrRangeNotSatisfiable
		}
		start := fileSize - suffix
		if start < 0 {
			start = 0
		}
		return &RangeSpec{Start: start, End: fileSize - 1, TotalSize: fileSize}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, ErrRangeMalformed
	}

	var end int64
	openEnded := false
	if endStr == "" {
		// Open-ended form: serve a bounded chunk from start.
		end = start + MaxChunkSize - 1
		if end > fileSize-1 {
			end = fileSize - 1
		}
		openEnded = true
	} else {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return nil, ErrRangeMalformed
		}
		if end > fileSize-1 {
			end = fileSize - 1
		}
	}

	if start > end || start >= fileSize {
		return nil, ErrRangeNotSatisfiable
	}

	return &RangeSpec{Start: start, End: end, TotalSize: fileSize, OpenEnded: openEnded}, nil
}
