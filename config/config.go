// Package config loads the client configuration from defaults, an optional
// YAML file and YADISK_ environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks the environment variables Load reads.
// YADISK_RETRY_COUNT sets retry.count.
const EnvPrefix = "YADISK_"

// Default endpoints
const (
	DefaultBaseURL  = "https://cloud-api.yandex.net"
	DefaultOAuthURL = "https://oauth.yandex.ru"
)

type loadOptions struct {
	path    string
	yaml    []byte
	environ func() []string
}

// LoadOption configures Load
type LoadOption func(*loadOptions)

// WithFile reads YAML from path. A missing file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithYAML reads YAML from data, after any file
func WithYAML(data []byte) LoadOption {
	return func(o *loadOptions) { o.yaml = data }
}

// WithEnviron replaces os.Environ as the source of environment variables
func WithEnviron(environ func() []string) LoadOption {
	return func(o *loadOptions) { o.environ = environ }
}

// Load merges the configuration sources and validates the result.
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{environ: os.Environ}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if o.path != "" {
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", o.path, err)
		}
	}

	if len(o.yaml) > 0 {
		if err := k.Load(rawbytes.Provider(o.yaml), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   o.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps YADISK_UPLOAD_TIMEOUT_READ to upload.timeout.read
func envKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
}

// Default returns the configuration Load produces without any file or environment
func Default() Config {
	k := koanf.New(".")
	// The defaults map is static; loading and decoding it cannot fail
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return cfg
}

func defaults() map[string]any {
	return map[string]any{
		"timeout.connect": "10s",
		"timeout.read":    "15s",

		"retry.count":    3,
		"retry.interval": "0s",

		"upload.timeout.connect": "10s",
		"upload.timeout.read":    "15s",
		"upload.retryinterval":   "0s",

		"api.baseurl":   DefaultBaseURL,
		"api.oauthurl":  DefaultOAuthURL,
		"api.useragent": "",

		"poll.wait":     true,
		"poll.interval": "1s",
		"poll.timeout":  "0s",

		"ratelimit.requestspersecond": 0,
		"ratelimit.burst":             0,

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":          false,
		"observability.service.name":     "yadisk",
		"observability.trace.endpoint":   "stdout",
		"observability.trace.protocol":   "http",
		"observability.trace.samplerate": 1.0,
		"observability.metrics.enabled":  false,
		"observability.metrics.interval": "60s",
	}
}
