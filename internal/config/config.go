// Package config holds configuration for the imgur-proxy service.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/configloader"
)

// Config holds all configuration for the imgur-proxy service.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Imgur   ImgurConfig   `yaml:"imgur"`
	Logging LoggingConfig `yaml:"logging"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Host    string `yaml:"host" env:"IMGUR_PROXY_HOST"`
	Port    int    `yaml:"port" env:"IMGUR_PROXY_PORT"`
	Debug   bool   `yaml:"debug" env:"IMGUR_PROXY_DEBUG"`
}

// ProxyConfig holds the externally-visible address of this proxy.
// Display URLs rendered into pages re-enter the proxy through this base.
type ProxyConfig struct {
	PublicBaseURL string `yaml:"public_base_url" env:"IMGUR_PROXY_PUBLIC_URL"`
	BasePath      string `yaml:"base_path" env:"IMGUR_PROXY_BASE_PATH"`
}

// ImgurConfig holds origin-service configuration.
type ImgurConfig struct {
	// AllowedDomains is the exact set of hostnames accepted by the URL
	// classifier. Matching is exact, never substring or suffix.
	AllowedDomains []string      `yaml:"allowed_domains" env:"IMGUR_ALLOWED_DOMAINS"`
	CDNHost        string        `yaml:"cdn_host" env:"IMGUR_CDN_HOST"`
	APIBaseURL     string        `yaml:"api_base_url" env:"IMGUR_API_BASE_URL"`
	ClientID       string        `yaml:"client_id" env:"IMGUR_CLIENT_ID"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"IMGUR_REQUEST_TIMEOUT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := configloader.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	// Service defaults
	if cfg.Service.Name == "" {
		cfg.Service.Name = "imgur-proxy"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Host == "" {
		cfg.Service.Host = "0.0.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8095
	}

	// Proxy defaults
	if cfg.Proxy.PublicBaseURL == "" {
		cfg.Proxy.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Service.Port)
	}
	cfg.Proxy.BasePath = strings.TrimSuffix(cfg.Proxy.BasePath, "/")

	// Imgur defaults
	if len(cfg.Imgur.AllowedDomains) == 0 {
		cfg.Imgur.AllowedDomains = []string{
			"imgur.com",
			"www.imgur.com",
			"m.imgur.com",
			"i.imgur.com",
		}
	}
	if cfg.Imgur.CDNHost == "" {
		cfg.Imgur.CDNHost = "i.imgur.com"
	}
	if cfg.Imgur.APIBaseURL == "" {
		cfg.Imgur.APIBaseURL = "https://api.imgur.com"
	}
	if cfg.Imgur.ClientID == "" {
		// Client ID used by the imgur web frontend itself.
		cfg.Imgur.ClientID = "546c25a59c58ad7"
	}
	if cfg.Imgur.RequestTimeout == 0 {
		cfg.Imgur.RequestTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	// CORS defaults
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type"}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := configloader.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if _, err := url.Parse(c.Proxy.PublicBaseURL); err != nil {
		return &configloader.ValidationError{
			Field:   "proxy.public_base_url",
			Message: fmt.Sprintf("not a valid URL: %v", err),
		}
	}
	if len(c.Imgur.AllowedDomains) == 0 {
		return &configloader.ValidationError{Field: "imgur.allowed_domains", Message: "is required"}
	}
	for _, d := range c.Imgur.AllowedDomains {
		if d == "" || strings.ContainsAny(d, "/@:") {
			return &configloader.ValidationError{
				Field:   "imgur.allowed_domains",
				Message: fmt.Sprintf("%q is not a bare hostname", d),
			}
		}
	}
	if c.Imgur.CDNHost == "" {
		return &configloader.ValidationError{Field: "imgur.cdn_host", Message: "is required"}
	}
	if c.Imgur.ClientID == "" {
		return &configloader.ValidationError{Field: "imgur.client_id", Message: "is required"}
	}
	if err := configloader.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := configloader.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

// PublicURL joins the configured public base URL, base path, and the given
// path segments into an externally-reachable URL.
func (c *Config) PublicURL(path string) string {
	base := strings.TrimSuffix(c.Proxy.PublicBaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + c.Proxy.BasePath + path
}
