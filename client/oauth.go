package client

import (
	"context"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ivknv/yadisk-go/auth"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
)

const (
	pathToken       = "/token"
	pathRevokeToken = "/revoke_token"
	pathDeviceCode  = "/device/code"
)

// Grant types of the token endpoint
const (
	GrantAuthorizationCode = "authorization_code"
	GrantDeviceCode        = "device_code"
	GrantRefreshToken      = "refresh_token"
)

// TokenOptions are the optional fields of a token exchange
type TokenOptions struct {
	DeviceID     string
	DeviceName   string
	CodeVerifier string
}

// DeviceCodeOptions are the optional fields of a device code request
type DeviceCodeOptions struct {
	DeviceID      string
	DeviceName    string
	Scope         []string
	OptionalScope []string
}

// AuthURL returns the authorization page for the configured application.
// responseType is auth.ResponseTypeCode or auth.ResponseTypeToken.
func (c *Client) AuthURL(responseType string, opts auth.AuthURLOptions) (string, error) {
	if opts.OAuthURL == "" {
		opts.OAuthURL = c.cfg.API.OAuthURL
	}
	return auth.AuthURL(responseType, c.cfg.Auth.ClientID, opts)
}

// CodeURL returns the authorization page that yields a confirmation code
func (c *Client) CodeURL(opts auth.AuthURLOptions) (string, error) {
	return c.AuthURL(auth.ResponseTypeCode, opts)
}

// GetToken exchanges a confirmation code for a token
func (c *Client) GetToken(ctx context.Context, code string, tokenOpts TokenOptions, opts ...request.Option) (*model.Token, error) {
	form := c.tokenForm(GrantAuthorizationCode, tokenOpts)
	form.Set("code", code)
	return c.postToken(ctx, form, opts)
}

// GetTokenFromDeviceCode exchanges a device code for a token. Until the user
// confirms access the server answers with an AuthorizationPending error.
func (c *Client) GetTokenFromDeviceCode(ctx context.Context, deviceCode string, tokenOpts TokenOptions, opts ...request.Option) (*model.Token, error) {
	form := c.tokenForm(GrantDeviceCode, tokenOpts)
	form.Set("code", deviceCode)
	return c.postToken(ctx, form, opts)
}

// RefreshToken issues a new token for refreshToken
func (c *Client) RefreshToken(ctx context.Context, refreshToken string, opts ...request.Option) (*model.Token, error) {
	form := url.Values{
		"grant_type":    {GrantRefreshToken},
		"refresh_token": {refreshToken},
		"client_id":     {c.cfg.Auth.ClientID},
		"client_secret": {c.cfg.Auth.ClientSecret},
	}
	return c.postToken(ctx, form, opts)
}

func (c *Client) tokenForm(grantType string, o TokenOptions) url.Values {
	form := url.Values{
		"grant_type": {grantType},
		"client_id":  {c.cfg.Auth.ClientID},
	}
	setForm(form, "client_secret", c.cfg.Auth.ClientSecret)
	setForm(form, "device_id", o.DeviceID)
	setForm(form, "device_name", o.DeviceName)
	setForm(form, "code_verifier", o.CodeVerifier)
	return form
}

func (c *Client) postToken(ctx context.Context, form url.Values, opts []request.Option) (*model.Token, error) {
	req := &request.Request[*model.Token]{
		Method:  nethttp.MethodPost,
		URL:     c.oauthEndpoint(pathToken),
		Body:    form,
		Options: request.Apply(opts...),
		Process: decodeTo[model.Token],
	}
	return req.Send(ctx, c.oauth)
}

// RevokeToken invalidates token
func (c *Client) RevokeToken(ctx context.Context, token string, opts ...request.Option) (*model.TokenRevokeStatus, error) {
	req := &request.Request[*model.TokenRevokeStatus]{
		Method: nethttp.MethodPost,
		URL:    c.oauthEndpoint(pathRevokeToken),
		Body: url.Values{
			"access_token":  {token},
			"client_id":     {c.cfg.Auth.ClientID},
			"client_secret": {c.cfg.Auth.ClientSecret},
		},
		Options: request.Apply(opts...),
		Process: decodeTo[model.TokenRevokeStatus],
	}
	return req.Send(ctx, c.oauth)
}

// GetDeviceCode starts the device flow: the user enters the returned user
// code on the verification page while the application polls
// GetTokenFromDeviceCode with the device code.
func (c *Client) GetDeviceCode(ctx context.Context, codeOpts DeviceCodeOptions, opts ...request.Option) (*model.DeviceCode, error) {
	form := url.Values{"client_id": {c.cfg.Auth.ClientID}}
	setForm(form, "device_id", codeOpts.DeviceID)
	setForm(form, "device_name", codeOpts.DeviceName)
	setForm(form, "scope", strings.Join(codeOpts.Scope, " "))
	setForm(form, "optional_scope", strings.Join(codeOpts.OptionalScope, " "))

	req := &request.Request[*model.DeviceCode]{
		Method:  nethttp.MethodPost,
		URL:     c.oauthEndpoint(pathDeviceCode),
		Body:    form,
		Options: request.Apply(opts...),
		Process: decodeTo[model.DeviceCode],
	}
	return req.Send(ctx, c.oauth)
}

// TokenSource returns a token source that refreshes initial through the
// token endpoint once it expires. Concurrent refreshes share one request.
func (c *Client) TokenSource(initial *oauth2.Token, opts ...auth.RefreshingOption) *auth.RefreshingSource {
	refresh := func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		tok, err := c.RefreshToken(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		return tok.ToOAuth2(time.Now()), nil
	}
	opts = append([]auth.RefreshingOption{auth.WithRefreshLogger(c.log)}, opts...)
	return auth.NewRefreshingSource(initial, refresh, opts...)
}

func setForm(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}
