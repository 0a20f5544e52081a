package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

func TestTraceProviderCapturesSpans(t *testing.T) {
	tp := NewTestTraceProvider()
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "HTTP PUT")
	span.SetAttributes(
		attribute.String("http.request.method", "PUT"),
		attribute.Int("http.response.status_code", 201),
	)
	span.SetStatus(codes.Ok, "")
	span.End()

	spans := tp.Exporter.GetSpans()
	require.Len(t, spans, 1)
	AssertSpanName(t, &spans[0], "HTTP PUT")
	AssertSpanAttribute(t, &spans[0], "http.request.method", "PUT")
	AssertSpanAttribute(t, &spans[0], "http.response.status_code", 201)
	AssertSpanStatus(t, &spans[0], codes.Ok)
}

func TestMeterProviderCollects(t *testing.T) {
	mp := NewTestMeterProvider()
	defer mp.Shutdown(context.Background())

	meter := mp.Meter("test")
	counter, err := meter.Int64Counter("requests")
	require.NoError(t, err)
	hist, err := meter.Float64Histogram("duration")
	require.NoError(t, err)

	ctx := context.Background()
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("method", "GET")))
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "PUT")))
	hist.Record(ctx, 0.5)
	hist.Record(ctx, 1.5)

	rm := mp.Collect(t)
	AssertMetricExists(t, rm, "requests")
	assert.Equal(t, int64(3), SumInt64(t, rm, "requests"))
	assert.Equal(t, uint64(2), HistogramCount(t, rm, "duration"))
	assert.Nil(t, FindMetric(rm, "missing"))
}
