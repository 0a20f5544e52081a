package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivknv/yadisk-go/validation"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}

// Validate checks cfg and returns the first problem as a *ConfigError.
func Validate(cfg *Config) error {
	if err := validation.Default().Validate(cfg); err != nil {
		var ve *validation.ValidationError
		if !errors.As(err, &ve) || len(ve.Errors) == 0 {
			return err
		}
		return fieldError(ve.Errors[0])
	}

	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst == 0 {
		return NewInvalidFieldError("ratelimit.burst", "must be positive when rate limiting is enabled", nil)
	}
	if cfg.Auth.RefreshToken != "" && (cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "") {
		return NewMissingFieldError("auth.clientid and auth.clientsecret")
	}
	if err := cfg.Observability.Validate(); err != nil {
		return &ConfigError{Category: "invalid", Field: "observability", Message: err.Error()}
	}
	return nil
}

// fieldError converts a validator failure to a ConfigError keyed by koanf path
func fieldError(fe validation.FieldError) *ConfigError {
	// Namespace is "Config.retry.count"
	field := fe.Field
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	if strings.HasSuffix(fe.Message, " is required") {
		return NewMissingFieldError(field)
	}
	var options []string
	if field == "log.level" {
		options = logLevels
	}
	return NewInvalidFieldError(field, fmt.Sprintf("%s (got %q)", fe.Message, fe.Value), options)
}
