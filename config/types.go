package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/ivknv/yadisk-go/observability"
)

// Config is the full client configuration. It is a plain value: pass it to
// client.New and change it by copying.
type Config struct {
	Timeout       TimeoutConfig        `koanf:"timeout" json:"timeout" yaml:"timeout"`
	Retry         RetryConfig          `koanf:"retry" json:"retry" yaml:"retry"`
	Upload        UploadConfig         `koanf:"upload" json:"upload" yaml:"upload"`
	API           APIConfig            `koanf:"api" json:"api" yaml:"api"`
	Auth          AuthConfig           `koanf:"auth" json:"auth" yaml:"auth"`
	Poll          PollConfig           `koanf:"poll" json:"poll" yaml:"poll"`
	RateLimit     RateLimitConfig      `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	Log           LogConfig            `koanf:"log" json:"log" yaml:"log"`
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	// k holds the merged sources Load read from
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// TimeoutConfig holds the connect and read timeouts. Zero disables either.
type TimeoutConfig struct {
	Connect time.Duration `koanf:"connect" json:"connect" yaml:"connect" validate:"gte=0"`
	Read    time.Duration `koanf:"read" json:"read" yaml:"read" validate:"gte=0"`
}

// RetryConfig is the default retry budget of every call
type RetryConfig struct {
	Count    int           `koanf:"count" json:"count" yaml:"count" validate:"gte=0"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
}

// UploadConfig overrides the timeout and retry interval of uploads
type UploadConfig struct {
	Timeout       TimeoutConfig `koanf:"timeout" json:"timeout" yaml:"timeout"`
	RetryInterval time.Duration `koanf:"retryinterval" json:"retryinterval" yaml:"retryinterval" validate:"gte=0"`
}

// APIConfig holds the service endpoints
type APIConfig struct {
	BaseURL   string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,http_url"`
	OAuthURL  string `koanf:"oauthurl" json:"oauthurl" yaml:"oauthurl" validate:"required,http_url"`
	UserAgent string `koanf:"useragent" json:"useragent" yaml:"useragent"`
}

// AuthConfig holds the application credentials and the user's tokens
type AuthConfig struct {
	ClientID     string `koanf:"clientid" json:"clientid" yaml:"clientid"`
	ClientSecret string `koanf:"clientsecret" json:"clientsecret" yaml:"clientsecret"`
	Token        string `koanf:"token" json:"token" yaml:"token"`
	RefreshToken string `koanf:"refreshtoken" json:"refreshtoken" yaml:"refreshtoken"`
}

// PollConfig controls waiting for asynchronous operations
type PollConfig struct {
	Wait     bool          `koanf:"wait" json:"wait" yaml:"wait"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
	// Timeout of zero means no limit
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
}

// RateLimitConfig throttles outgoing requests. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requestspersecond" json:"requestspersecond" yaml:"requestspersecond" validate:"gte=0"`
	Burst             int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// Exists reports whether key was set by any source Load read.
// It is false for configs not built by Load.
func (c *Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}
