// Package auth builds Yandex OAuth URLs and supplies access tokens to the
// HTTP session.
package auth

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultOAuthURL is the Yandex OAuth server
const DefaultOAuthURL = "https://oauth.yandex.ru"

// Response types of the authorization page
const (
	ResponseTypeCode  = "code"
	ResponseTypeToken = "token"
)

// PKCE challenge methods
const (
	ChallengePlain = "plain"
	ChallengeS256  = "S256"
)

var (
	ErrInvalidResponseType    = errors.New("response type must be either 'code' or 'token'")
	ErrInvalidChallengeMethod = errors.New("code challenge method must be either 'plain' or 'S256'")
)

// AuthURLOptions are the optional parameters of the authorization page
type AuthURLOptions struct {
	OAuthURL      string
	DeviceID      string
	DeviceName    string
	RedirectURI   string
	LoginHint     string
	Scope         []string
	OptionalScope []string
	// SkipConfirm renders force_confirm=no. The page asks for confirmation by default.
	SkipConfirm         bool
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthURL returns the page the user visits to grant access. No request is sent.
func AuthURL(responseType, clientID string, opts AuthURLOptions) (string, error) {
	if responseType != ResponseTypeCode && responseType != ResponseTypeToken {
		return "", ErrInvalidResponseType
	}
	switch opts.CodeChallengeMethod {
	case "", ChallengePlain, ChallengeS256:
	default:
		return "", ErrInvalidChallengeMethod
	}

	params := url.Values{}
	params.Set("response_type", responseType)
	params.Set("client_id", clientID)
	if opts.SkipConfirm {
		params.Set("force_confirm", "no")
	} else {
		params.Set("force_confirm", "yes")
	}

	setIf(params, "device_id", opts.DeviceID)
	setIf(params, "device_name", opts.DeviceName)
	setIf(params, "redirect_uri", opts.RedirectURI)
	setIf(params, "login_hint", opts.LoginHint)
	if len(opts.Scope) > 0 {
		params.Set("scope", strings.Join(opts.Scope, " "))
	}
	if len(opts.OptionalScope) > 0 {
		params.Set("optional_scope", strings.Join(opts.OptionalScope, " "))
	}
	setIf(params, "state", opts.State)
	setIf(params, "code_challenge", opts.CodeChallenge)
	setIf(params, "code_challenge_method", opts.CodeChallengeMethod)

	return Endpoint(opts.OAuthURL).AuthURL + "?" + params.Encode(), nil
}

// CodeURL is AuthURL for the confirmation code flow
func CodeURL(clientID string, opts AuthURLOptions) (string, error) {
	return AuthURL(ResponseTypeCode, clientID, opts)
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// Endpoint returns the OAuth endpoints under oauthURL, or DefaultOAuthURL when empty
func Endpoint(oauthURL string) oauth2.Endpoint {
	if oauthURL == "" {
		oauthURL = DefaultOAuthURL
	}
	base := strings.TrimRight(oauthURL, "/")
	return oauth2.Endpoint{
		AuthURL:       base + "/authorize",
		TokenURL:      base + "/token",
		DeviceAuthURL: base + "/device/code",
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

// PKCE is a code verifier with its S256 challenge
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// NewPKCE generates a fresh verifier
func NewPKCE() PKCE {
	verifier := oauth2.GenerateVerifier()
	return PKCE{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
		Method:    ChallengeS256,
	}
}

// Apply sets the challenge on opts
func (p PKCE) Apply(opts AuthURLOptions) AuthURLOptions {
	opts.CodeChallenge = p.Challenge
	opts.CodeChallengeMethod = p.Method
	return opts
}
