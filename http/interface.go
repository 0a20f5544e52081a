package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/url"
	"time"
)

// Session sends HTTP requests. Implementations must be safe for concurrent use.
type Session interface {
	Send(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// Timeout holds the connect and read timeouts of a request. Zero disables either.
type Timeout struct {
	Connect time.Duration
	Read    time.Duration
}

// Request is a single HTTP request as seen by the session
type Request struct {
	Method string
	URL    string
	Params url.Values
	Body   io.Reader
	// GetBody returns a fresh copy of Body for redirects. Nil means 307 and
	// 308 redirects of requests with a body are not followed.
	GetBody func() (io.Reader, error)
	// ContentLength is the size of Body when known and net/http cannot tell it. Zero means unknown.
	ContentLength int64
	Headers       nethttp.Header
	Timeout       Timeout
	// Stream leaves the response body unread; the caller must Close the Response
	Stream bool
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response headers
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error
