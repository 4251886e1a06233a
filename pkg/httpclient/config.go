package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// Config represents HTTP client configuration options
type Config struct {
	Timeout   time.Duration     `json:"timeout" yaml:"timeout"`
	UserAgent string            `json:"user_agent" yaml:"user_agent"`
	Headers   map[string]string `json:"headers" yaml:"headers"`

	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	KeepAlive   time.Duration `json:"keep_alive" yaml:"keep_alive"`
}

// DefaultConfig returns a secure default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		UserAgent:   "Hermes/1.0 (https://cybermonkey.net.au)",
		Headers:     make(map[string]string),
		DialTimeout: 5 * time.Second,
		KeepAlive:   30 * time.Second,
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *Config {
	config := DefaultConfig()
	config.Timeout = 5 * time.Second
	config.DialTimeout = 1 * time.Second
	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "must be positive"}
	}
	if c.DialTimeout < 0 {
		return &ConfigError{Field: "DialTimeout", Message: "cannot be negative"}
	}
	return nil
}

// NewClient builds an HTTP client from the configuration.
func NewClient(config *Config) (*http.Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		TLSClientConfig: getTLSConfig(),
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
	}

	return &http.Client{
		Timeout:   config.Timeout,
		Transport: &headerRoundTripper{base: transport, config: config},
	}, nil
}

// headerRoundTripper applies the configured User-Agent and static headers
// to every outgoing request.
type headerRoundTripper struct {
	base   http.RoundTripper
	config *Config
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if h.config.UserAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", h.config.UserAgent)
	}
	for key, value := range h.config.Headers {
		if clone.Header.Get(key) == "" {
			clone.Header.Set(key, value)
		}
	}
	return h.base.RoundTrip(clone)
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Message)
}
