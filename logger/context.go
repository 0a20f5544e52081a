package logger

import (
	"context"
	"sync/atomic"
	"time"
)

type contextKey string

const (
	// apiCounterKey tracks the number of HTTP calls made for one logical operation
	apiCounterKey contextKey = "api_call_counter"
	// apiElapsedKey tracks the total time spent in those calls
	apiElapsedKey contextKey = "api_elapsed_nanos"
)

// WithAPICounter returns a context that accumulates HTTP call statistics.
// A retried upload, for example, reports every attempt and every link request.
func WithAPICounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, apiCounterKey, &counter)
	ctx = context.WithValue(ctx, apiElapsedKey, &elapsed)
	return ctx
}

// IncrementAPICall records one HTTP call. It is a no-op without WithAPICounter.
func IncrementAPICall(ctx context.Context, elapsed time.Duration) {
	if counter, ok := ctx.Value(apiCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
	if total, ok := ctx.Value(apiElapsedKey).(*int64); ok && total != nil {
		atomic.AddInt64(total, int64(elapsed))
	}
}

// APICallStats returns the call count and total elapsed time recorded in ctx
func APICallStats(ctx context.Context) (int64, time.Duration) {
	var calls, nanos int64
	if counter, ok := ctx.Value(apiCounterKey).(*int64); ok && counter != nil {
		calls = atomic.LoadInt64(counter)
	}
	if total, ok := ctx.Value(apiElapsedKey).(*int64); ok && total != nil {
		nanos = atomic.LoadInt64(total)
	}
	return calls, time.Duration(nanos)
}

// HasAPICounter reports whether ctx already carries call statistics
func HasAPICounter(ctx context.Context) bool {
	_, ok := ctx.Value(apiCounterKey).(*int64)
	return ok
}
