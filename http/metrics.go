package http

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/observability"
)

const (
	meterName  = "yadisk/http"
	tracerName = "yadisk/http"

	metricRequestDuration = "http.client.request.duration" // Histogram in seconds
	metricRequests        = "yadisk.http.client.requests"  // Counter

	attrErrorType = "error.type"
)

var (
	meterOnce sync.Once

	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
)

func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize http metric %s: %v\n", name, err)
	}
}

// initMeter creates the instruments on first use so that a MeterProvider
// installed after package init is still picked up.
func initMeter() {
	meter := otel.Meter(meterName)

	var err error
	requestDuration, err = observability.CreateHistogram(meter,
		metricRequestDuration,
		"Duration of HTTP client requests",
		metric.WithUnit("s"),
	)
	logMetricError(metricRequestDuration, err)

	requestCounter, err = observability.CreateCounter(meter,
		metricRequests,
		"Number of HTTP requests sent to Yandex.Disk",
		metric.WithUnit("{request}"),
	)
	logMetricError(metricRequests, err)
}

// recordRequest records duration and count for one Send
func recordRequest(ctx context.Context, method, host string, status int, duration time.Duration, err error) {
	meterOnce.Do(initMeter)

	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(method),
		semconv.ServerAddress(host),
	}
	if status > 0 {
		attrs = append(attrs, semconv.HTTPResponseStatusCode(status))
	}
	if err != nil {
		errType := "other"
		if kind, ok := apierr.KindOf(err); ok {
			errType = string(kind)
		}
		attrs = append(attrs, attribute.String(attrErrorType, errType))
	} else if status >= 400 {
		attrs = append(attrs, attribute.String(attrErrorType, strconv.Itoa(status)))
	}

	opt := metric.WithAttributes(attrs...)
	if requestDuration != nil {
		requestDuration.Record(ctx, duration.Seconds(), opt)
	}
	if requestCounter != nil {
		requestCounter.Add(ctx, 1, opt)
	}
}
