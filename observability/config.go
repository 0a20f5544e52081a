package observability

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultMetricsInterval is how often metrics are exported when unset
	DefaultMetricsInterval = 60 * time.Second
)

// Config defines the telemetry exported by the CLI and by applications
// that embed the client. The client itself only uses the global providers.
type Config struct {
	// Enabled controls whether observability is active.
	// When false, NewProvider returns a no-op provider.
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`
	Trace   TraceConfig   `koanf:"trace" json:"trace" yaml:"trace"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// ServiceConfig contains service identification metadata.
type ServiceConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Version string `koanf:"version" json:"version" yaml:"version"`
}

// TraceConfig configures span export
type TraceConfig struct {
	// Endpoint is "stdout" or an OTLP collector address
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	// Protocol is "http" or "grpc"; metrics use the same protocol
	Protocol string            `koanf:"protocol" json:"protocol" yaml:"protocol"`
	Insecure bool              `koanf:"insecure" json:"insecure" yaml:"insecure"`
	Headers  map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	// SampleRate is the fraction of traces recorded, from 0 to 1
	SampleRate float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
	// Endpoint defaults to the trace endpoint
	Endpoint string        `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval"`
}

// ApplyDefaults fills unset fields. SampleRate is left as is: zero is a valid choice.
func (c *Config) ApplyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = c.Trace.Endpoint
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = DefaultMetricsInterval
	}
	c.Trace.Headers = cloneHeaderMap(c.Trace.Headers)
}

// Validate checks the config. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Service.Name == "" {
		return ErrMissingServiceName
	}
	if c.Trace.SampleRate < 0 || c.Trace.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	if c.Trace.Protocol != ProtocolHTTP && c.Trace.Protocol != ProtocolGRPC {
		return fmt.Errorf("trace protocol '%s': %w", c.Trace.Protocol, ErrInvalidProtocol)
	}
	for _, endpoint := range []string{c.Trace.Endpoint, c.Metrics.Endpoint} {
		if err := validateEndpoint(endpoint, c.Trace.Protocol); err != nil {
			return err
		}
	}
	return nil
}

func validateEndpoint(endpoint, protocol string) error {
	if endpoint == EndpointStdout || endpoint == "" {
		return nil
	}
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
	if protocol == ProtocolGRPC && hasScheme {
		return fmt.Errorf("grpc endpoint %q must be host:port: %w", endpoint, ErrInvalidEndpointFormat)
	}
	return nil
}

// cloneHeaderMap creates a deep copy of a header map to avoid aliasing.
func cloneHeaderMap(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	clone := make(map[string]string, len(headers))
	maps.Copy(clone, headers)
	return clone
}
