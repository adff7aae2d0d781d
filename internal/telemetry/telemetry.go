package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"media-library/internal/logging"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultSampleRatio is the trace sampling ratio for traces without an
// upstream sampling decision.
const DefaultSampleRatio = 0.1

// Init configures the global tracer provider. Export is driven entirely by
// the standard OTEL_EXPORTER_OTLP_ENDPOINT variable: when unset, tracing is
// a noop and the returned shutdown does nothing. The returned function
// flushes and stops the exporter.
func Init(ctx context.Context, serviceName, version string) (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		logging.Debug("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("building telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(DefaultSampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logging.Info("Tracing enabled for %s, exporting to %s", serviceName, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	return tp.Shutdown, nil
}

// WrapHandler instruments an HTTP handler with server spans. Scrape and
// probe traffic is filtered out so dashboards are not dominated by it.
func WrapHandler(h http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(h, operation,
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			if p == "/metrics" || p == "/version" {
				return false
			}
			if p == "/health" || p == "/healthz" || p == "/livez" || p == "/readyz" {
				return false
			}
			return !strings.HasPrefix(p, "/health/")
		}),
	)
}
