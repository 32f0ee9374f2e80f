package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultServiceName          = "podbean-proxy"
	DefaultAPIBaseURL           = "https://api.podbean.com/v1"
	DefaultTokenURL             = "https://api.podbean.com/v1/oauth/token"
	DefaultAllowedOrigin        = "*"
	DefaultAllowedHeaders       = "Content-Type"
	DefaultAllowedMethods       = "GET, POST, OPTIONS"
	DefaultUpstreamTimeout      = 30 * time.Second
	DefaultMaxResponseBodyBytes = int64(10 << 20) // 10 MiB
)

type PodbeanConfig struct {
	APIBaseURL   string `koanf:"api_base_url" mapstructure:"api_base_url"`
	TokenURL     string `koanf:"token_url" mapstructure:"token_url"`
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
}

type CORSConfig struct {
	AllowedOrigin  string `koanf:"allowed_origin" mapstructure:"allowed_origin"`
	AllowedHeaders string `koanf:"allowed_headers" mapstructure:"allowed_headers"`
	AllowedMethods string `koanf:"allowed_methods" mapstructure:"allowed_methods"`
}

type UpstreamConfig struct {
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Podbean     PodbeanConfig  `koanf:"podbean" mapstructure:"podbean"`
	CORS        CORSConfig     `koanf:"cors" mapstructure:"cors"`
	Upstream    UpstreamConfig `koanf:"upstream" mapstructure:"upstream"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		Podbean: PodbeanConfig{
			APIBaseURL: DefaultAPIBaseURL,
			TokenURL:   DefaultTokenURL,
		},
		CORS: CORSConfig{
			AllowedOrigin:  DefaultAllowedOrigin,
			AllowedHeaders: DefaultAllowedHeaders,
			AllowedMethods: DefaultAllowedMethods,
		},
		Upstream: UpstreamConfig{
			Timeout:              DefaultUpstreamTimeout,
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		},
	}
}

// Validate checks the structural settings only. Credentials are checked per
// request so a misconfigured deployment still answers with an error envelope.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if err := validateHTTPURL("podbean.api_base_url", c.Podbean.APIBaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("podbean.token_url", c.Podbean.TokenURL); err != nil {
		return err
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("core: upstream.timeout must be >= 0")
	}
	if c.Upstream.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: upstream.max_response_body_bytes must be >= 0")
	}
	return nil
}

// Credentials returns the client-credentials pair with surrounding whitespace
// removed.
func (c Config) Credentials() Credentials {
	return Credentials{
		ClientID:     strings.TrimSpace(c.Podbean.ClientID),
		ClientSecret: strings.TrimSpace(c.Podbean.ClientSecret),
	}
}

type Credentials struct {
	ClientID     string
	ClientSecret string
}

func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// String never renders the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID:%q ClientSecret:%s}", c.ClientID, RedactedValue)
}

func (c Credentials) GoString() string {
	return c.String()
}

func validateHTTPURL(field string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("core: %s is required", field)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("core: %s is invalid: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: %s must use http or https", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: %s must be absolute", field)
	}
	return nil
}
