// Package telemetry constructs the otel tracer and meter providers this
// core's orchestrator, runtime, and negotiation packages record spans
// against, grounded on the teacher's pkg/observability/tracer.go (same
// enabled-flag/exporter-selection shape, trimmed to the exporters this
// core's go.mod actually carries: stdouttrace and the prometheus metric
// exporter, rather than otlpgrpc).
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kaziai/core/internal/config"
)

// Telemetry bundles the tracer/meter providers for one process along with
// their shutdown hook.
type Telemetry struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdown func(context.Context) error
}

// New builds tracer and meter providers per cfg. When cfg.Enabled is false,
// both providers are no-ops and Shutdown is a no-op.
func New(ctx context.Context, cfg config.TelemetryConfig) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{TracerProvider: noop.NewTracerProvider(), MeterProvider: otel.GetMeterProvider()}, nil
	}

	tracerProvider, shutdownTracer, err := buildTracerProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building tracer provider: %w", err)
	}

	meterProvider, err := buildMeterProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building meter provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		shutdown: func(ctx context.Context) error {
			if err := shutdownTracer(ctx); err != nil {
				return err
			}
			return meterProvider.Shutdown(ctx)
		},
	}, nil
}

func buildTracerProvider(ctx context.Context, cfg config.TelemetryConfig) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	switch cfg.TraceExporter {
	case "none", "":
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Shutdown, nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("stdouttrace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		return tp, tp.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("unknown trace_exporter %q", cfg.TraceExporter)
	}
}

func buildMeterProvider(cfg config.TelemetryConfig) (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

// Tracer returns a named tracer off t's provider, grounded on the teacher's
// GetTracer helper.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.TracerProvider.Tracer(name)
}

// Shutdown flushes and closes the exporters. Safe to call on a disabled
// Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}
