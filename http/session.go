package http

import (
	"context"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/trace"
)

const (
	// DefaultMaxRedirects matches the redirect limit of net/http
	DefaultMaxRedirects = 10

	headerAuthorization = "Authorization"
)

type connectTimeoutKey struct{}

// contextTokenSource is a token source that can refresh under the request context
type contextTokenSource interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// NetSession is the net/http implementation of Session
type NetSession struct {
	httpClient           *nethttp.Client
	ownsTransport        bool
	logger               logger.Logger
	headers              nethttp.Header
	tokenSource          oauth2.TokenSource
	limiter              *rate.Limiter
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	callCount            int64
}

var _ Session = (*NetSession)(nil)

// NewSession creates a session with default settings
func NewSession(log logger.Logger) *NetSession {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring a NetSession
type Builder struct {
	logger               logger.Logger
	httpClient           *nethttp.Client
	headers              nethttp.Header
	tokenSource          oauth2.TokenSource
	limiter              *rate.Limiter
	maxRedirects         int
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewBuilder creates a new session builder
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		logger:       log,
		headers:      nethttp.Header{},
		maxRedirects: DefaultMaxRedirects,
	}
}

// WithHTTPClient replaces the underlying client. Connect timeouts are then
// left to the client's own transport.
func (b *Builder) WithHTTPClient(c *nethttp.Client) *Builder {
	b.httpClient = c
	return b
}

// WithDefaultHeader adds a header sent with every request
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.headers.Set(key, value)
	return b
}

// WithUserAgent sets the User-Agent header
func (b *Builder) WithUserAgent(ua string) *Builder {
	if ua != "" {
		b.headers.Set("User-Agent", ua)
	}
	return b
}

// WithToken authorizes requests with a fixed OAuth token
func (b *Builder) WithToken(token string) *Builder {
	if token == "" {
		b.tokenSource = nil
		return b
	}
	return b.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// WithTokenSource authorizes requests with tokens from ts
func (b *Builder) WithTokenSource(ts oauth2.TokenSource) *Builder {
	b.tokenSource = ts
	return b
}

// WithRateLimit limits outgoing requests. A non-positive rps disables limiting.
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	if rps <= 0 {
		b.limiter = nil
		return b
	}
	b.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	return b
}

// WithMaxRedirects sets how many redirects are followed before failing
func (b *Builder) WithMaxRedirects(n int) *Builder {
	b.maxRedirects = n
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.requestInterceptors = append(b.requestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.responseInterceptors = append(b.responseInterceptors, interceptor)
	return b
}

// Build creates the session
func (b *Builder) Build() *NetSession {
	s := &NetSession{
		logger:               b.logger,
		headers:              b.headers.Clone(),
		tokenSource:          b.tokenSource,
		limiter:              b.limiter,
		requestInterceptors:  b.requestInterceptors,
		responseInterceptors: b.responseInterceptors,
	}

	maxRedirects := b.maxRedirects
	checkRedirect := func(_ *nethttp.Request, via []*nethttp.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects: %w", len(via), errTooManyRedirects)
		}
		return nil
	}

	if b.httpClient != nil {
		c := *b.httpClient
		if c.CheckRedirect == nil {
			c.CheckRedirect = checkRedirect
		}
		s.httpClient = &c
		return s
	}

	s.httpClient = &nethttp.Client{
		Transport:     newTransport(),
		CheckRedirect: checkRedirect,
	}
	s.ownsTransport = true
	return s
}

// newTransport clones the default transport and reads the dial timeout from the request context
func newTransport() *nethttp.Transport {
	t := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	base := &net.Dialer{KeepAlive: 30 * time.Second}
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := *base
		if timeout, ok := ctx.Value(connectTimeoutKey{}).(time.Duration); ok && timeout > 0 {
			d.Timeout = timeout
		}
		return d.DialContext(ctx, network, addr)
	}
	return t
}

// Send performs a single HTTP request. It never retries.
func (s *NetSession) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	callCount := atomic.AddInt64(&s.callCount, 1)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "HTTP "+req.Method,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
	)
	defer span.End()

	reqCtx, cancel := context.WithCancelCause(ctx)
	if req.Timeout.Connect > 0 {
		reqCtx = context.WithValue(reqCtx, connectTimeoutKey{}, req.Timeout.Connect)
	}
	timer := startReadTimer(req.Timeout, cancel)

	httpReq, err := s.buildRequest(reqCtx, req)
	if err != nil {
		stopTimer(timer)
		cancel(nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	watchRequestBody(httpReq, timer, req.Timeout.Read)

	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.URLFull(redactURL(httpReq.URL)),
		semconv.ServerAddress(httpReq.URL.Hostname()),
	)
	s.logRequest(httpReq)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		stopTimer(timer)
		err = convertError(ctx, reqCtx, err)
		cancel(nil)
		s.finish(ctx, span, httpReq, 0, start, err)
		return nil, err
	}

	if err := s.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		stopTimer(timer)
		httpResp.Body.Close()
		cancel(nil)
		err = fmt.Errorf("response interceptor failed: %w", err)
		s.finish(ctx, span, httpReq, httpResp.StatusCode, start, err)
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		convert: func(e error) error {
			return convertError(ctx, reqCtx, e)
		},
	}

	body := &timeoutBody{ReadCloser: httpResp.Body, timer: timer, read: req.Timeout.Read, cancel: cancel}
	body.reset()

	if req.Stream {
		resp.body = body
	} else {
		data, readErr := io.ReadAll(body)
		body.Close()
		if readErr != nil {
			err := convertError(ctx, reqCtx, readErr)
			s.finish(ctx, span, httpReq, httpResp.StatusCode, start, err)
			return nil, err
		}
		resp.data = data
	}

	resp.Stats = Stats{ElapsedTime: time.Since(start), CallCount: callCount}
	s.finish(ctx, span, httpReq, resp.StatusCode, start, nil)
	s.logResponse(resp)
	return resp, nil
}

// Close releases idle connections held by the session's own transport
func (s *NetSession) Close() error {
	if s.ownsTransport {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}

func (s *NetSession) finish(ctx context.Context, span oteltrace.Span, httpReq *nethttp.Request, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	logger.IncrementAPICall(ctx, elapsed)
	recordRequest(ctx, httpReq.Method, httpReq.URL.Hostname(), status, elapsed, err)

	if status > 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug().
			Err(err).
			Str("direction", "inbound").
			Str("method", httpReq.Method).
			Dur("elapsed", elapsed).
			Msg("Yandex.Disk request failed")
	case status >= 400:
		span.SetStatus(codes.Error, nethttp.StatusText(status))
	}
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if req.URL == "" {
		return fmt.Errorf("request URL cannot be empty")
	}
	if req.Method == "" {
		return fmt.Errorf("request method cannot be empty")
	}
	return nil
}

// buildRequest constructs the *http.Request: query, headers, auth, trace and interceptors.
func (s *NetSession) buildRequest(ctx context.Context, req *Request) (*nethttp.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for k, vs := range req.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	// The caller owns Body; net/http would close it after sending
	body := req.Body
	if _, ok := body.(io.Closer); ok {
		body = io.NopCloser(body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if req.ContentLength > 0 && httpReq.ContentLength <= 0 {
		httpReq.ContentLength = req.ContentLength
	}
	if req.GetBody != nil {
		httpReq.GetBody = func() (io.ReadCloser, error) {
			r, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			return io.NopCloser(r), nil
		}
	}

	s.applyHeaders(httpReq, req)
	if err := s.applyAuth(httpReq); err != nil {
		return nil, err
	}
	trace.Inject(ctx, httpReq.Header)

	for _, interceptor := range s.requestInterceptors {
		if err := interceptor(ctx, httpReq); err != nil {
			return nil, fmt.Errorf("request interceptor failed: %w", err)
		}
	}
	return httpReq, nil
}

// applyHeaders applies session defaults first, then per-request headers
func (s *NetSession) applyHeaders(httpReq *nethttp.Request, req *Request) {
	for key, values := range s.headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("Connection") == "close" {
		httpReq.Close = true
	}
}

// applyAuth sets the OAuth header unless the request already carries one
func (s *NetSession) applyAuth(httpReq *nethttp.Request) error {
	if s.tokenSource == nil || httpReq.Header.Get(headerAuthorization) != "" {
		return nil
	}
	var (
		tok *oauth2.Token
		err error
	)
	if cs, ok := s.tokenSource.(contextTokenSource); ok {
		tok, err = cs.TokenContext(httpReq.Context())
	} else {
		tok, err = s.tokenSource.Token()
	}
	if err != nil {
		return fmt.Errorf("failed to obtain OAuth token: %w", err)
	}
	if tok != nil && tok.AccessToken != "" {
		httpReq.Header.Set(headerAuthorization, "OAuth "+tok.AccessToken)
	}
	return nil
}

func (s *NetSession) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range s.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}

func (s *NetSession) logRequest(httpReq *nethttp.Request) {
	s.logger.Debug().
		Str("direction", "outbound").
		Str("method", httpReq.Method).
		Str("url", redactURL(httpReq.URL)).
		Interface("headers", httpReq.Header).
		Msg("Yandex.Disk request")
}

func (s *NetSession) logResponse(resp *Response) {
	event := s.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount)
	if len(resp.data) > 0 && len(resp.data) <= 4096 {
		event = event.Bytes("body", resp.data)
	}
	event.Msg("Yandex.Disk response")
}

// redactURL drops the query string, which for transfer links holds signatures
func redactURL(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}

// startReadTimer arms the first wait: connect plus read, since dialing happens first.
// Request body reads and response body reads restart it with the read timeout.
func startReadTimer(t Timeout, cancel context.CancelCauseFunc) *time.Timer {
	if t.Read <= 0 {
		return nil
	}
	return time.AfterFunc(t.Connect+t.Read, func() { cancel(errReadTimeout) })
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// timeoutBody restarts the read timer on every read and releases the
// request context on Close.
type timeoutBody struct {
	io.ReadCloser
	timer  *time.Timer
	read   time.Duration
	cancel context.CancelCauseFunc
}

func (b *timeoutBody) reset() {
	if b.timer != nil {
		b.timer.Reset(b.read)
	}
}

func (b *timeoutBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.reset()
	return n, err
}

func (b *timeoutBody) Close() error {
	stopTimer(b.timer)
	err := b.ReadCloser.Close()
	b.cancel(nil)
	return err
}

// watchRequestBody makes every read of the request body restart the read
// timer. A slow upload then times out only when it stalls, and the wait for
// the response headers starts after the last byte is sent.
func watchRequestBody(httpReq *nethttp.Request, timer *time.Timer, read time.Duration) {
	if timer == nil || httpReq.Body == nil || httpReq.Body == nethttp.NoBody {
		return
	}
	httpReq.Body = &uploadBody{ReadCloser: httpReq.Body, timer: timer, read: read}
	if getBody := httpReq.GetBody; getBody != nil {
		httpReq.GetBody = func() (io.ReadCloser, error) {
			body, err := getBody()
			if err != nil || body == nethttp.NoBody {
				return body, err
			}
			return &uploadBody{ReadCloser: body, timer: timer, read: read}, nil
		}
	}
}

// uploadBody restarts the read timer on every read. Closing it leaves the
// request context alone.
type uploadBody struct {
	io.ReadCloser
	timer *time.Timer
	read  time.Duration
}

func (b *uploadBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.timer.Reset(b.read)
	return n, err
}
