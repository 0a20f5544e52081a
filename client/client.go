// Package client is the Yandex.Disk REST API client.
//
// Every method takes per-call request options on top of the configured
// defaults and runs under the retry engine. Calls that start a server-side
// operation wait for it to finish unless told otherwise, and the wait is
// part of the retried unit.
package client

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/auth"
	"github.com/ivknv/yadisk-go/config"
	yhttp "github.com/ivknv/yadisk-go/http"
	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/operation"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/retry"
)

// Client talks to one Yandex.Disk account. It is safe for concurrent use.
type Client struct {
	cfg      config.Config
	log      logger.Logger
	strategy retry.Strategy

	session      yhttp.Session
	oauthSession yhttp.Session
	ownsSession  bool

	tokenSource oauth2.TokenSource

	api    *request.Dispatcher
	upload *request.Dispatcher
	oauth  *request.Dispatcher
}

type options struct {
	session     yhttp.Session
	log         logger.Logger
	token       *string
	tokenSource oauth2.TokenSource
	strategy    retry.Strategy
}

// Option configures a Client
type Option func(*options)

// WithSession sends all requests through s. The client does not close it.
func WithSession(s yhttp.Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithToken overrides the configured access token
func WithToken(token string) Option {
	return func(o *options) {
		o.token = &token
	}
}

// WithTokenSource authorizes requests with tokens from ts
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) {
		o.tokenSource = ts
	}
}

// WithStrategy sets how the client waits between retries and status polls
func WithStrategy(s retry.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// New creates a client from cfg
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	o := options{strategy: retry.Blocking}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = logger.Nop()
	}

	c := &Client{
		cfg:      cfg,
		log:      o.log,
		strategy: o.strategy,
	}

	token := cfg.Auth.Token
	if o.token != nil {
		token = *o.token
	}
	switch {
	case o.tokenSource != nil:
		c.tokenSource = o.tokenSource
	case cfg.Auth.RefreshToken != "":
		c.tokenSource = c.TokenSource(&oauth2.Token{AccessToken: token, RefreshToken: cfg.Auth.RefreshToken})
	case token != "":
		c.tokenSource = auth.StaticSource(token)
	}

	if o.session != nil {
		c.session = o.session
		c.oauthSession = o.session
	} else {
		c.session = c.newSession(c.tokenSource)
		c.oauthSession = c.newSession(nil)
		c.ownsSession = true
	}

	defaults := request.Defaults{
		Timeout:       yhttp.Timeout{Connect: cfg.Timeout.Connect, Read: cfg.Timeout.Read},
		NRetries:      cfg.Retry.Count,
		RetryInterval: cfg.Retry.Interval,
		Strategy:      c.strategy,
		Wait:          cfg.Poll.Wait,
		PollInterval:  cfg.Poll.Interval,
		PollTimeout:   cfg.Poll.Timeout,
	}
	uploadDefaults := defaults
	uploadDefaults.Timeout = yhttp.Timeout{Connect: cfg.Upload.Timeout.Connect, Read: cfg.Upload.Timeout.Read}
	uploadDefaults.RetryInterval = cfg.Upload.RetryInterval

	c.api = &request.Dispatcher{Session: c.session, Logger: c.log, Defaults: defaults}
	c.upload = &request.Dispatcher{Session: c.session, Logger: c.log, Defaults: uploadDefaults}
	c.oauth = &request.Dispatcher{Session: c.oauthSession, Logger: c.log, Defaults: defaults}

	c.log.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("strategy", c.strategy.String()).
		Int("retries", cfg.Retry.Count).
		Msg("Yandex.Disk client created")
	return c, nil
}

// NewAsync creates a client whose waits honor context cancellation
func NewAsync(cfg config.Config, opts ...Option) (*Client, error) {
	return New(cfg, append([]Option{WithStrategy(retry.Suspending)}, opts...)...)
}

// newSession builds the default session. OAuth endpoints get one without a
// token source, since refreshing a token goes through them.
func (c *Client) newSession(ts oauth2.TokenSource) yhttp.Session {
	return yhttp.NewBuilder(c.log).
		WithUserAgent(c.cfg.API.UserAgent).
		WithRateLimit(c.cfg.RateLimit.RequestsPerSecond, c.cfg.RateLimit.Burst).
		WithTokenSource(ts).
		Build()
}

// Close releases the sessions the client created
func (c *Client) Close() error {
	if !c.ownsSession {
		return nil
	}
	return errors.Join(c.session.Close(), c.oauthSession.Close())
}

// Config returns the configuration the client was created with
func (c *Client) Config() config.Config {
	return c.cfg
}

// Strategy returns the client's default waiting strategy
func (c *Client) Strategy() retry.Strategy {
	return c.strategy
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.API.BaseURL, "/") + path
}

func (c *Client) oauthEndpoint(path string) string {
	return strings.TrimRight(c.cfg.API.OAuthURL, "/") + path
}

// sendAndWait sends req and, when the call waits, polls the operation it
// started. Both steps share one retry budget, so a failed operation is
// started again.
func (c *Client) sendAndWait(ctx context.Context, req *request.Request[model.AsyncLink]) (model.AsyncLink, error) {
	resolved := req.Resolve(c.api)
	if !resolved.Wait {
		return req.Send(ctx, c.api)
	}

	ctx = request.Begin(ctx)
	pollOpts := req.Options.With()
	pollOpts.Params = nil

	return retry.Do(ctx, resolved.Policy(c.log), func(ctx context.Context) (model.AsyncLink, error) {
		result, err := req.Attempt(ctx, c.api)
		if err != nil {
			return result, err
		}
		return operation.Then(ctx, result, c.log, func(ctx context.Context, link *model.OperationLink) error {
			return c.waitForOperation(ctx, link.Href, pollOpts)
		})
	})
}

// asyncLink interprets the response of a call that may run asynchronously
func (c *Client) asyncLink(r request.Result, forceAsync bool) (model.AsyncLink, error) {
	link, err := model.Decode[model.Link](r.JSON)
	if err != nil {
		return model.AsyncLink{}, apierr.WithDisableRetry(err)
	}
	if model.IsOperationLink(link.Href, c.cfg.API.BaseURL) {
		return model.AsyncLink{Operation: &model.OperationLink{Link: link}}, nil
	}
	if forceAsync {
		return model.AsyncLink{}, errNoOperationLink()
	}
	rl, err := model.Decode[model.ResourceLink](r.JSON)
	if err != nil {
		return model.AsyncLink{}, apierr.WithDisableRetry(err)
	}
	return model.AsyncLink{Resource: &rl}, nil
}

func errNoOperationLink() error {
	return apierr.WithDisableRetry(apierr.NewInvalidResponseError(
		"Yandex.Disk did not return an operation link, despite force_async=true", nil))
}

func forcesAsync(opts request.Options) bool {
	return opts.Params.Get(paramForceAsync) == "true"
}

func values(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}
