package middleware

import (
	"net/http"
	"strings"

	"media-library/internal/logging"
	"media-library/internal/metrics"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the global token-bucket limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate; 0 disables limiting
	RequestsPerSecond float64
	// Burst is the bucket size
	Burst int
	// SkipPaths are exempt from limiting
	SkipPaths []string
}

// DefaultRateLimitConfig returns the default limiter configuration.
// Probes and scrapes are exempt so an overloaded server still reports
// healthy to its orchestrator.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		SkipPaths:         []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// RateLimit returns middleware applying a single server-wide token bucket.
// Rejected requests get 429 with a Retry-After hint.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	if config.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if !limiter.Allow() {
				metrics.HTTPRateLimitedTotal.Inc()
				logging.Debug("Rate limited %s %s from %s", r.Method, r.URL.Path, getClientIP(r))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
