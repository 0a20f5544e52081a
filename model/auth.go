package model

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the OAuth token response
type Token struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    *int64 `json:"expires_in,omitempty" validate:"omitempty,gte=0"`
	Scope        string `json:"scope,omitempty"`
}

// ToOAuth2 converts the token, computing the expiry relative to now
func (t *Token) ToOAuth2(now time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiresIn != nil && *t.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(*t.ExpiresIn) * time.Second)
		tok.ExpiresIn = *t.ExpiresIn
	}
	if t.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": t.Scope})
	}
	return tok
}

// TokenRevokeStatus is the result of token revocation
type TokenRevokeStatus struct {
	Status string `json:"status"`
}

// DeviceCode is the response of the device authorization flow
type DeviceCode struct {
	DeviceCode      string `json:"device_code" validate:"required"`
	UserCode        string `json:"user_code" validate:"required"`
	VerificationURL string `json:"verification_url,omitempty"`
	Interval        *int   `json:"interval,omitempty"`
	ExpiresIn       *int   `json:"expires_in,omitempty"`
}
