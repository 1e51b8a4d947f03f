package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/internal/config"
)

func TestNewDisabledReturnsNoopProviders(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{Enabled: false})

	require.NoError(t, err)
	assert.NotNil(t, tel.TracerProvider)
	assert.NotNil(t, tel.Tracer("test"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewEnabledWithStdoutExporterBuildsProviders(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{
		Enabled: true, ServiceName: "kaziai-test", TraceExporter: "stdout",
	})

	require.NoError(t, err)
	assert.NotNil(t, tel.TracerProvider)
	assert.NotNil(t, tel.MeterProvider)

	_, span := tel.Tracer("orchestrator").Start(context.Background(), "dispatch")
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewRejectsUnknownExporter(t *testing.T) {
	_, err := New(context.Background(), config.TelemetryConfig{Enabled: true, TraceExporter: "bogus"})

	assert.Error(t, err)
}
