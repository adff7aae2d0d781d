package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"media-library/internal/logging"
)

var (
	// ErrWriteTimeout indicates a single write took longer than the
	// configured timeout, usually a client draining too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected mid-stream.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates the stream was shut down locally, by
	// Close or server shutdown.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig bounds how long a streaming response may stall.
type TimeoutWriterConfig struct {
	// WriteTimeout caps a single write to the client.
	WriteTimeout time.Duration
	// IdleTimeout caps the gap between successful writes.
	IdleTimeout time.Duration
	// MaxDuration caps the whole stream. 0 means unlimited; range
	// responses already bound their own length.
	MaxDuration time.Duration
	// ChunkSize splits large writes so bytes reach the player as they are
	// read. 0 writes buffers whole.
	ChunkSize int
}

// DefaultTimeoutWriterConfig returns the limits used for media streams.
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxDuration:  0,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter so a stalled client cannot pin
// a byte source's file handle indefinitely. The server's WriteTimeout is
// disabled for streaming routes; this writer provides the per-write and
// idle bounds instead.
type TimeoutWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     TimeoutWriterConfig
	started time.Time

	mu        sync.Mutex
	lastWrite time.Time
	written   int64
	closed    bool
}

// NewTimeoutWriter wraps w. The writer watches ctx, so cancellation by the
// client ends the stream on the next write.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, cfg TimeoutWriterConfig) *TimeoutWriter {
	wctx, cancel := context.WithCancel(ctx)
	now := time.Now()

	tw := &TimeoutWriter{
		w:         w,
		ctx:       wctx,
		cancel:    cancel,
		cfg:       cfg,
		started:   now,
		lastWrite: now,
	}
	tw.flusher, _ = w.(http.Flusher)

	if cfg.IdleTimeout > 0 {
		go tw.watchIdle()
	}
	return tw
}

// Write sends p to the client, chunked and bounded per the configuration.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	if err := tw.ctx.Err(); err != nil {
		return 0, tw.ctxErr()
	}
	if tw.cfg.MaxDuration > 0 && time.Since(tw.started) > tw.cfg.MaxDuration {
		return 0, ErrWriteTimeout
	}

	if tw.cfg.ChunkSize <= 0 || len(p) <= tw.cfg.ChunkSize {
		return tw.writeOne(p)
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctx.Err(); err != nil {
			return total, tw.ctxErr()
		}

		chunk := tw.cfg.ChunkSize
		if len(p) < chunk {
			chunk = len(p)
		}
		n, err := tw.writeOne(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[chunk:]

		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

// writeOne performs a single bounded write. The write itself runs in a
// goroutine because http.ResponseWriter has no deadline of its own once the
// server write timeout is off.
func (tw *TimeoutWriter) writeOne(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := tw.w.Write(p)
		ch <- result{n, err}
	}()

	timer := time.NewTimer(tw.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err == nil {
			tw.mu.Lock()
			tw.lastWrite = time.Now()
			tw.written += int64(res.n)
			tw.mu.Unlock()
		}
		return res.n, res.err
	case <-timer.C:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.ctxErr()
	}
}

// watchIdle cancels the stream when no write has succeeded within the idle
// timeout, catching clients that stall between reads rather than inside one.
func (tw *TimeoutWriter) watchIdle() {
	ticker := time.NewTicker(tw.cfg.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			closed := tw.closed
			tw.mu.Unlock()

			if closed {
				return
			}
			if idle > tw.cfg.IdleTimeout {
				logging.Warn("Stream idle for %v, dropping client", idle)
				tw.cancel()
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *TimeoutWriter) ctxErr() error {
	if tw.ctx.Err() == context.Canceled {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close ends the stream. Safe to call more than once.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if !tw.closed {
		tw.closed = true
		tw.cancel()
	}
	return nil
}

// Stats reports bytes delivered and elapsed time so far.
func (tw *TimeoutWriter) Stats() (written int64, elapsed time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.written, time.Since(tw.started)
}

// copyWithTimeout streams r to the response through a TimeoutWriter and
// returns the bytes delivered alongside any error.
func copyWithTimeout(ctx context.Context, w http.ResponseWriter, r io.Reader, cfg TimeoutWriterConfig) (int64, error) {
	tw := NewTimeoutWriter(ctx, w, cfg)
	defer tw.Close()

	_, err := io.Copy(tw, r)

	written, elapsed := tw.Stats()
	logging.Debug("Stream finished: %d bytes in %v", written, elapsed)
	return written, err
}
