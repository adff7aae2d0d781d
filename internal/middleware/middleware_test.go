package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler(body string, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Write([]byte(body))
	})
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	handler := Metrics(DefaultMetricsConfig())(okHandler("ok", "text/plain"))

	r := httptest.NewRequest(http.MethodGet, "/api/libraries", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("response = %d %q", w.Code, w.Body.String())
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/libraries", "/api/libraries"},
		{"/api/browse/Movies", "/api/browse/Movies"},
		{"/api/stream/Movies/a/b/c.mp4", "/api/stream/Movies/{path}"},
		{"/api/preview/Photos/trips/2025/img.jpg", "/api/preview/Photos/{path}"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	config := RateLimitConfig{RequestsPerSecond: 1, Burst: 2}
	handler := RateLimit(config)(okHandler("ok", ""))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/libraries", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests = %v, first two should pass", codes)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 429 after burst", codes)
	}
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})(okHandler("ok", ""))

	// Exhaust the single token.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestRateLimitExemptsProbes(t *testing.T) {
	config := DefaultRateLimitConfig()
	config.RequestsPerSecond = 0.001
	config.Burst = 1
	handler := RateLimit(config)(okHandler("ok", ""))

	// Exhaust the bucket.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/libraries", nil))

	for _, path := range []string{"/health", "/healthz", "/metrics", "/readyz"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200 (exempt)", path, w.Code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(RateLimitConfig{})(okHandler("ok", ""))
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d = %d with limiting disabled", i, w.Code)
		}
	}
}

func TestCompressionCompressesJSON(t *testing.T) {
	body := strings.Repeat(`{"key":"value"},`, 200)
	handler := Compression(DefaultCompressionConfig())(okHandler(body, "application/json"))

	r := httptest.NewRequest(http.MethodGet, "/api/browse/Movies", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	decompressed, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	if string(decompressed) != body {
		t.Error("decompressed body does not match original")
	}
}

func TestCompressionSkipsSmallResponses(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(okHandler("tiny", "application/json"))

	r := httptest.NewRequest(http.MethodGet, "/api/libraries", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Header().Get("Content-Encoding") == "gzip" {
		t.Error("small response was compressed")
	}
	if w.Body.String() != "tiny" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestCompressionSkipsMediaRoutes(t *testing.T) {
	body := strings.Repeat("x", 4096)
	handler := Compression(DefaultCompressionConfig())(okHandler(body, "text/plain"))

	for _, path := range []string{
		"/api/stream/Movies/a.mp4",
		"/api/download/Movies/a.mp4",
		"/api/archive/Movies/folder",
		"/api/preview/Photos/a.jpg",
		"/api/poster/Movies/a.mp4",
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Header().Get("Content-Encoding") == "gzip" {
			t.Errorf("%s was compressed", path)
		}
		if w.Body.String() != body {
			t.Errorf("%s body modified", path)
		}
	}
}

func TestCompressionSkipsIncompressibleTypes(t *testing.T) {
	body := strings.Repeat("x", 4096)
	handler := Compression(DefaultCompressionConfig())(okHandler(body, "image/jpeg"))

	r := httptest.NewRequest(http.MethodGet, "/api/other", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Header().Get("Content-Encoding") == "gzip" {
		t.Error("image/jpeg was compressed")
	}
}

func TestCompressionWithoutAcceptEncoding(t *testing.T) {
	body := strings.Repeat(`{"k":"v"},`, 500)
	handler := Compression(DefaultCompressionConfig())(okHandler(body, "application/json"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/x", nil))

	if w.Header().Get("Content-Encoding") == "gzip" {
		t.Error("compressed without Accept-Encoding: gzip")
	}
	if w.Body.String() != body {
		t.Error("body modified")
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	handler := Recovery()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/x", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Errorf("body = %q", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("panic detail leaked to client")
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(okHandler("ok", "text/plain"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/libraries", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("response = %d %q", w.Code, w.Body.String())
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line1\nline2", "line1 line2"},
		{"cr\rhere", "cr here"},
		{"esc\x1b[31mred", "esc[31mred"},
		{"nul\x00byte", "nulbyte"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:12345"
	if got := getClientIP(r); got != "10.0.0.1" {
		t.Errorf("RemoteAddr IP = %q", got)
	}

	r.Header.Set("X-Real-IP", "10.0.0.2")
	if got := getClientIP(r); got != "10.0.0.2" {
		t.Errorf("X-Real-IP = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	if got := getClientIP(r); got != "203.0.113.7" {
		t.Errorf("X-Forwarded-For = %q", got)
	}
}
