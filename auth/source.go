package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/ivknv/yadisk-go/logger"
)

// ErrNoRefreshToken is returned when an expired token cannot be refreshed
var ErrNoRefreshToken = errors.New("token expired and no refresh token is available")

// Refresher exchanges a refresh token for a new token
type Refresher func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// StaticSource always returns token
func StaticSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "OAuth"})
}

// RefreshingSource returns the cached token while it is valid and refreshes
// it otherwise. Concurrent refreshes share one request.
type RefreshingSource struct {
	refresh   Refresher
	onRefresh func(*oauth2.Token) error
	log       logger.Logger

	mu      sync.RWMutex
	current *oauth2.Token
	group   singleflight.Group
}

var _ oauth2.TokenSource = (*RefreshingSource)(nil)

// RefreshingOption configures a RefreshingSource
type RefreshingOption func(*RefreshingSource)

// WithOnRefresh registers a callback for persisting refreshed tokens.
// An error from it fails the Token call.
func WithOnRefresh(fn func(*oauth2.Token) error) RefreshingOption {
	return func(s *RefreshingSource) {
		s.onRefresh = fn
	}
}

// WithRefreshLogger sets the logger used for refresh events
func WithRefreshLogger(log logger.Logger) RefreshingOption {
	return func(s *RefreshingSource) {
		s.log = log
	}
}

// NewRefreshingSource starts from initial, which may be nil
func NewRefreshingSource(initial *oauth2.Token, refresh Refresher, opts ...RefreshingOption) *RefreshingSource {
	s := &RefreshingSource{
		refresh: refresh,
		current: initial,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token implements oauth2.TokenSource
func (s *RefreshingSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext returns a valid token, refreshing under ctx when needed
func (s *RefreshingSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current.Valid() {
		return current, nil
	}
	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	v, err, shared := s.group.Do(current.RefreshToken, func() (any, error) {
		s.mu.RLock()
		latest := s.current
		s.mu.RUnlock()
		if latest.Valid() {
			return latest, nil
		}

		tok, err := s.refresh(ctx, current.RefreshToken)
		if err != nil {
			return nil, err
		}
		// Yandex omits the refresh token when it did not change
		if tok.RefreshToken == "" {
			tok.RefreshToken = current.RefreshToken
		}
		if s.onRefresh != nil {
			if err := s.onRefresh(tok); err != nil {
				return nil, err
			}
		}
		s.mu.Lock()
		s.current = tok
		s.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("token refresh failed")
		return nil, err
	}
	s.log.Debug().Interface("shared", shared).Msg("token refreshed")
	return v.(*oauth2.Token), nil
}

// Current returns the cached token without refreshing
func (s *RefreshingSource) Current() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
