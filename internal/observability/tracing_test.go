package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_DisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "devhub-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "content", "create", attribute.String("kind", "game"))
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
	EndSpan(span, nil)
}

func TestTrackQuery(t *testing.T) {
	done := TrackQuery("select", "games")
	assert.NotPanics(t, done)
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, newSampler(2).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	exp, err := newExporter(ctx, TracingConfig{Exporter: "stdout"})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(ctx))

	exp, err = newExporter(ctx, TracingConfig{Exporter: "OTLP", OTLPEndpoint: "http://collector:4318"})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(ctx))

	_, err = newExporter(ctx, TracingConfig{Exporter: "otlp"})
	assert.Error(t, err)

	_, err = newExporter(ctx, TracingConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}
