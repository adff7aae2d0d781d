// Package telemetry wires OpenTelemetry tracing. Export is opt-in via the
// standard OTEL_EXPORTER_OTLP_ENDPOINT environment variable; without it the
// provider is a noop and request handling pays no tracing cost.
package telemetry
