// Package middleware provides the HTTP middleware chain: panic recovery,
// global rate limiting, Prometheus request metrics, W3C access logging, and
// gzip compression. Compression exempts media routes, whose payloads are
// either incompressible or depend on exact Content-Length.
package middleware
