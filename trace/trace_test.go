package trace

import (
	"context"
	nethttp "net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
	assert.Equal(t, "req-1", EnsureRequestID(ctx))
}

func TestEmptyRequestIDIsAbsent(t *testing.T) {
	_, ok := RequestIDFromContext(WithRequestID(context.Background(), ""))
	assert.False(t, ok)
}

func TestEnsureRequestIDGeneratesUUID(t *testing.T) {
	id := EnsureRequestID(context.Background())
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, EnsureRequestID(context.Background()))
}

func TestInject(t *testing.T) {
	t.Run("sets id from context", func(t *testing.T) {
		h := nethttp.Header{}
		id := Inject(WithRequestID(context.Background(), "abc"), h)
		assert.Equal(t, "abc", id)
		assert.Equal(t, "abc", h.Get(HeaderXRequestID))
	})

	t.Run("keeps existing header", func(t *testing.T) {
		h := nethttp.Header{}
		h.Set(HeaderXRequestID, "preset")
		assert.Equal(t, "preset", Inject(WithRequestID(context.Background(), "abc"), h))
	})

	t.Run("propagates span context", func(t *testing.T) {
		prev := otel.GetTextMapPropagator()
		otel.SetTextMapPropagator(propagation.TraceContext{})
		t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

		tp := sdktrace.NewTracerProvider()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		h := nethttp.Header{}
		Inject(ctx, h)
		assert.Contains(t, h.Get("traceparent"), span.SpanContext().TraceID().String())
	})
}
