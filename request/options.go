package request

import (
	nethttp "net/http"
	"net/url"
	"time"

	yhttp "github.com/ivknv/yadisk-go/http"
	"github.com/ivknv/yadisk-go/retry"
)

// Options is the option set accepted by every client method.
// Unset fields fall back to Defaults.
type Options struct {
	Timeout       *yhttp.Timeout
	Headers       nethttp.Header
	Params        url.Values
	NRetries      *int
	RetryInterval *time.Duration
	RetryOn       []retry.Predicate
	Strategy      *retry.Strategy

	// Wait, PollInterval and PollTimeout apply to calls that start an
	// asynchronous operation.
	Wait         *bool
	PollInterval *time.Duration
	PollTimeout  *time.Duration
}

// Option configures Options
type Option func(*Options)

// Defaults are the values used for options a call leaves unset
type Defaults struct {
	Timeout       yhttp.Timeout
	NRetries      int
	RetryInterval time.Duration
	Strategy      retry.Strategy
	Wait          bool
	PollInterval  time.Duration
	// PollTimeout of zero means no limit
	PollTimeout time.Duration
}

// Resolved is Options with every default applied
type Resolved struct {
	Timeout       yhttp.Timeout
	Headers       nethttp.Header
	Params        url.Values
	NRetries      int
	RetryInterval time.Duration
	RetryOn       []retry.Predicate
	Strategy      retry.Strategy
	Wait          bool
	PollInterval  time.Duration
	PollTimeout   time.Duration
}

// Apply builds Options from opts
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// With returns a copy of o with opts applied on top
func (o Options) With(opts ...Option) Options {
	o.Headers = o.Headers.Clone()
	o.Params = cloneValues(o.Params)
	o.RetryOn = append([]retry.Predicate(nil), o.RetryOn...)
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Resolve fills unset options from d
func (o Options) Resolve(d Defaults) Resolved {
	r := Resolved{
		Timeout:       d.Timeout,
		Headers:       o.Headers,
		Params:        o.Params,
		NRetries:      d.NRetries,
		RetryInterval: d.RetryInterval,
		RetryOn:       o.RetryOn,
		Strategy:      d.Strategy,
		Wait:          d.Wait,
		PollInterval:  d.PollInterval,
		PollTimeout:   d.PollTimeout,
	}
	if o.Timeout != nil {
		r.Timeout = *o.Timeout
	}
	if o.NRetries != nil {
		r.NRetries = *o.NRetries
	}
	if o.RetryInterval != nil {
		r.RetryInterval = *o.RetryInterval
	}
	if o.Strategy != nil {
		r.Strategy = *o.Strategy
	}
	if o.Wait != nil {
		r.Wait = *o.Wait
	}
	if o.PollInterval != nil {
		r.PollInterval = *o.PollInterval
	}
	if o.PollTimeout != nil {
		r.PollTimeout = *o.PollTimeout
	}
	return r
}

// WithTimeout sets the connect and read timeouts. Zero disables a timeout.
func WithTimeout(connect, read time.Duration) Option {
	return func(o *Options) {
		o.Timeout = &yhttp.Timeout{Connect: connect, Read: read}
	}
}

// WithHeader adds a header to the call
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = nethttp.Header{}
		}
		o.Headers.Set(key, value)
	}
}

// WithHeaders merges h into the call's headers
func WithHeaders(h nethttp.Header) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = nethttp.Header{}
		}
		for k, vs := range h {
			o.Headers[nethttp.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
}

// WithParam adds an extra query parameter, e.g. fields or preview_size
func WithParam(key, value string) Option {
	return func(o *Options) {
		if o.Params == nil {
			o.Params = url.Values{}
		}
		o.Params.Set(key, value)
	}
}

// WithRetries sets the number of retries. Zero means a single attempt.
func WithRetries(n int) Option {
	return func(o *Options) {
		o.NRetries = &n
	}
}

// WithRetryInterval sets the pause between attempts
func WithRetryInterval(d time.Duration) Option {
	return func(o *Options) {
		o.RetryInterval = &d
	}
}

// WithRetryOn adds predicates for errors that should be retried as well
func WithRetryOn(preds ...retry.Predicate) Option {
	return func(o *Options) {
		o.RetryOn = append(o.RetryOn, preds...)
	}
}

// WithStrategy sets how the call waits between attempts and polls
func WithStrategy(s retry.Strategy) Option {
	return func(o *Options) {
		o.Strategy = &s
	}
}

// WithWait makes an operation-starting call wait for the operation to finish
func WithWait(wait bool) Option {
	return func(o *Options) {
		o.Wait = &wait
	}
}

// WithPollInterval sets the pause between operation status checks
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = &d
	}
}

// WithPollTimeout limits the total time spent waiting for an operation. Zero means no limit.
func WithPollTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.PollTimeout = &d
	}
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
