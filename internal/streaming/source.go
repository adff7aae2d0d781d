package streaming

import (
	"fmt"
	"io"
	"os"
	"sync"

	"media-library/internal/filesystem"
	"media-library/internal/metrics"
)

// SourceBufferSize is the size of the internal read buffer. Reads from the
// underlying file happen in chunks of this size to amortize syscalls,
// which matters on rotational and network storage.
const SourceBufferSize = 1024 * 1024

// Source is a buffered reader over a fixed byte interval of a file. It
// yields exactly the requested length and then io.EOF, never reading past
// the end of the interval even if the file grows concurrently. Each Source
// owns its file handle; Close releases it and is safe to call more than once.
type Source struct {
	file      *os.File
	remaining int64
	buf       []byte
	bufPos    int
	bufLen    int

	closeOnce sync.Once
	closeErr  error
}

// NewSource opens path, seeks to start, and returns a Source bounded to
// length bytes. The seek is a true positional seek, correct at any offset.
func NewSource(path string, start, length int64) (*Source, error) {
	if start < 0 || length < 0 {
		return nil, fmt.Errorf("invalid interval: start=%d length=%d", start, length)
	}

	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seeking to %d: %w", start, err)
	}

	metrics.OpenByteSources.Inc()

	return &Source{
		file:      file,
		remaining: length,
		buf:       make([]byte, SourceBufferSize),
	}, nil
}

// Read implements io.Reader. It drains the internal buffer first and only
// issues an underlying read when the buffer is empty and bytes remain. The
// underlying read never requests more than min(bufferSize, remaining), so the
// source cannot overrun the interval.
func (s *Source) Read(p []byte) (int, error) {
	if s.bufPos >= s.bufLen {
		if s.remaining <= 0 {
			return 0, io.EOF
		}
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.buf[s.bufPos:s.bufLen])
	s.bufPos += n
	return n, nil
}

// fill refills the internal buffer with up to min(bufferSize, remaining)
// bytes. A zero-byte read from the underlying file before the interval is
// exhausted is a transport error, not a normal end.
func (s *Source) fill() error {
	want := int64(len(s.buf))
	if want > s.remaining {
		want = s.remaining
	}

	n, err := s.file.Read(s.buf[:want])
	if n > 0 {
		s.bufPos = 0
		s.bufLen = n
		s.remaining -= int64(n)
		return nil
	}
	if err == nil || err == io.EOF {
		// The file ended before the interval did.
		return io.ErrUnexpectedEOF
	}
	return err
}

// Skip advances the read position by n bytes without delivering them.
// Buffered bytes are consumed first; any remainder becomes a positional seek
// on the handle. Skipping past the end of the interval truncates to it.
func (s *Source) Skip(n int64) error {
	if n <= 0 {
		return nil
	}

	// Consume from the buffer first.
	buffered := int64(s.bufLen - s.bufPos)
	if n <= buffered {
		s.bufPos += int(n)
		return nil
	}
	n -= buffered
	s.bufPos = 0
	s.bufLen = 0

	if n > s.remaining {
		n = s.remaining
	}
	if n == 0 {
		return nil
	}

	if _, err := s.file.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("skipping %d bytes: %w", n, err)
	}
	s.remaining -= n
	return nil
}

// Remaining returns the number of interval bytes not yet read or skipped,
// excluding bytes sitting in the internal buffer.
func (s *Source) Remaining() int64 {
	return s.remaining + int64(s.bufLen-s.bufPos)
}

// Close releases the file handle. Safe to call on every exit path, including
// after an error or client disconnect; subsequent calls are no-ops.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		metrics.OpenByteSources.Dec()
		s.closeErr = s.file.Close()
	})
	return s.closeErr
}
