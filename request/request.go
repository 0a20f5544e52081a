// Package request is the dispatch layer shared by every API call: it builds
// the HTTP request, checks the status code, classifies failures, decodes the
// body and runs the whole attempt under the retry engine.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"slices"

	"github.com/ivknv/yadisk-go/apierr"
	yhttp "github.com/ivknv/yadisk-go/http"
	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/retry"
	"github.com/ivknv/yadisk-go/trace"
	"github.com/ivknv/yadisk-go/validation"
)

// Dispatcher carries what every request needs to be sent
type Dispatcher struct {
	Session  yhttp.Session
	Logger   logger.Logger
	Defaults Defaults
	// Headers are sent with every request, below per-request headers
	Headers nethttp.Header
}

func (d *Dispatcher) log() logger.Logger {
	if d.Logger == nil {
		return logger.Nop()
	}
	return d.Logger
}

// Result is a successful response handed to ProcessFunc
type Result struct {
	StatusCode int
	Header     nethttp.Header
	// JSON is nil when the body is empty or not JSON
	JSON json.RawMessage
	// Response is set for streamed requests. It is closed after ProcessFunc returns.
	Response *yhttp.Response
}

// ProcessFunc turns a successful response into the typed result
type ProcessFunc[T any] func(ctx context.Context, r Result) (T, error)

// Request describes one API call
type Request[T any] struct {
	Method string
	URL    string
	Params url.Values
	// Body is nil, []byte, string, url.Values, io.Reader, BodyFunc, or a
	// value to be JSON-encoded. An io.Reader can only be sent once; use
	// BodyFunc for replayable bodies.
	Body any
	// ContentLength is passed to the transport for bodies of known size
	ContentLength int64
	Headers       nethttp.Header
	// ContentType is used when Body does not determine one
	ContentType string
	// SuccessCodes default to 200
	SuccessCodes []int
	Stream       bool
	Options      Options
	Process      ProcessFunc[T]
}

// Resolve returns the request's options with d's defaults applied
func (r *Request[T]) Resolve(d *Dispatcher) Resolved {
	return r.Options.Resolve(d.Defaults)
}

// Attempt sends the request once
func (r *Request[T]) Attempt(ctx context.Context, d *Dispatcher) (T, error) {
	return r.attempt(ctx, d, r.Resolve(d))
}

// Send sends the request under the retry engine, using the request's own budget
func (r *Request[T]) Send(ctx context.Context, d *Dispatcher) (T, error) {
	resolved := r.Resolve(d)
	ctx = Begin(ctx)

	result, err := retry.Do(ctx, resolved.Policy(d.log()), func(ctx context.Context) (T, error) {
		return r.attempt(ctx, d, resolved)
	})

	calls, elapsed := logger.APICallStats(ctx)
	d.log().Debug().
		Str("method", r.Method).
		Int64("api_calls", calls).
		Dur("api_elapsed", elapsed).
		Msg("Yandex.Disk call finished")
	return result, err
}

// Begin prepares ctx for one logical call: a request ID shared by all
// attempts and an API call counter.
func Begin(ctx context.Context) context.Context {
	if _, ok := trace.RequestIDFromContext(ctx); !ok {
		ctx = trace.WithRequestID(ctx, trace.EnsureRequestID(ctx))
	}
	if !logger.HasAPICounter(ctx) {
		ctx = logger.WithAPICounter(ctx)
	}
	return ctx
}

// Policy builds the retry policy for the resolved options
func (r Resolved) Policy(log logger.Logger) retry.Policy {
	return retry.Policy{
		MaxRetries: r.NRetries,
		Interval:   r.RetryInterval,
		RetryOn:    r.RetryOn,
		Strategy:   r.Strategy,
		Logger:     log,
	}
}

func (r *Request[T]) attempt(ctx context.Context, d *Dispatcher, opts Resolved) (T, error) {
	var zero T

	if d.Session == nil {
		return zero, errors.New("request: dispatcher has no session")
	}

	body, bodyType, err := encodeBody(r.Body)
	if err != nil {
		return zero, err
	}

	headers := mergeHeaders(d.Headers, r.Headers, opts.Headers)
	if body != nil && headers.Get("Content-Type") == "" {
		switch {
		case bodyType != "":
			headers.Set("Content-Type", bodyType)
		case r.ContentType != "":
			headers.Set("Content-Type", r.ContentType)
		default:
			headers.Set("Content-Type", ContentTypeForm)
		}
	}

	resp, err := d.Session.Send(ctx, &yhttp.Request{
		Method:        r.Method,
		URL:           r.URL,
		Params:        mergeParams(r.Params, opts.Params),
		Body:          body,
		GetBody:       replayBody(r.Body),
		ContentLength: r.ContentLength,
		Headers:       headers,
		Timeout:       opts.Timeout,
		Stream:        r.Stream,
	})
	if err != nil {
		return zero, err
	}
	defer resp.Close()

	if !r.isSuccess(resp.StatusCode) {
		data, readErr := resp.Bytes()
		if readErr != nil {
			data = nil
		}
		return zero, apierr.FromResponse(resp.StatusCode, data)
	}

	result := Result{StatusCode: resp.StatusCode, Header: resp.Header}
	if r.Stream {
		result.Response = resp
	} else {
		data, err := resp.Bytes()
		if err != nil {
			return zero, err
		}
		if data = bytes.TrimSpace(data); len(data) > 0 && json.Valid(data) {
			result.JSON = data
		}
	}

	if r.Process == nil {
		return zero, nil
	}
	v, err := r.Process(ctx, result)
	if err != nil {
		var ve *validation.ValidationError
		if errors.As(err, &ve) {
			return zero, apierr.NewInvalidResponseError(fmt.Sprintf("Server returned an invalid object: %v", ve), err)
		}
		return zero, err
	}
	return v, nil
}

func (r *Request[T]) isSuccess(status int) bool {
	if len(r.SuccessCodes) == 0 {
		return status == nethttp.StatusOK
	}
	return slices.Contains(r.SuccessCodes, status)
}

// mergeHeaders layers header sets, later ones winning per key
func mergeHeaders(layers ...nethttp.Header) nethttp.Header {
	out := nethttp.Header{}
	for _, layer := range layers {
		for k, vs := range layer {
			out[nethttp.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
	return out
}

func mergeParams(base, extra url.Values) url.Values {
	if len(extra) == 0 {
		return base
	}
	out := cloneValues(base)
	if out == nil {
		out = url.Values{}
	}
	for k, vs := range extra {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Decode returns a ProcessFunc that decodes and validates the body as T
func Decode[T any]() ProcessFunc[T] {
	return func(_ context.Context, r Result) (T, error) {
		return model.Decode[T](r.JSON)
	}
}

// Discard is a ProcessFunc for calls whose body is not needed
func Discard(context.Context, Result) (struct{}, error) {
	return struct{}{}, nil
}
