package config

import (
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assertStringEqual(t, "service.name", "imgur-proxy", cfg.Service.Name)
	assertStringEqual(t, "service.host", "0.0.0.0", cfg.Service.Host)
	if cfg.Service.Port != 8095 {
		t.Errorf("service.port: got %d, want 8095", cfg.Service.Port)
	}

	assertStringEqual(t, "proxy.public_base_url", "http://localhost:8095", cfg.Proxy.PublicBaseURL)

	wantDomains := []string{"imgur.com", "www.imgur.com", "m.imgur.com", "i.imgur.com"}
	if len(cfg.Imgur.AllowedDomains) != len(wantDomains) {
		t.Fatalf("imgur.allowed_domains: got %v, want %v", cfg.Imgur.AllowedDomains, wantDomains)
	}
	for i, d := range wantDomains {
		assertStringEqual(t, "imgur.allowed_domains", d, cfg.Imgur.AllowedDomains[i])
	}

	assertStringEqual(t, "imgur.cdn_host", "i.imgur.com", cfg.Imgur.CDNHost)
	assertStringEqual(t, "imgur.api_base_url", "https://api.imgur.com", cfg.Imgur.APIBaseURL)
	if cfg.Imgur.ClientID == "" {
		t.Error("imgur.client_id: got empty, want a default")
	}
	if cfg.Imgur.RequestTimeout != 30*time.Second {
		t.Errorf("imgur.request_timeout: got %v, want %v", cfg.Imgur.RequestTimeout, 30*time.Second)
	}

	assertStringEqual(t, "logging.level", "info", cfg.Logging.Level)
	assertStringEqual(t, "logging.format", "json", cfg.Logging.Format)
}

func TestSetDefaults_TrimsBasePathSlash(t *testing.T) {
	cfg := &Config{}
	cfg.Proxy.BasePath = "/imgur/"
	setDefaults(cfg)

	assertStringEqual(t, "proxy.base_path", "/imgur", cfg.Proxy.BasePath)
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no validation error, got: %v", err)
	}
}

func TestValidate_RejectsNonHostnameDomain(t *testing.T) {
	tests := []struct {
		name   string
		domain string
	}{
		{"empty entry", ""},
		{"contains path", "imgur.com/evil"},
		{"contains credentials", "user@imgur.com"},
		{"contains port", "imgur.com:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			cfg.Imgur.AllowedDomains = []string{tt.domain}

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for domain %q, got nil", tt.domain)
			}
		})
	}
}

func TestValidate_MissingClientID(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Imgur.ClientID = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing client ID, got nil")
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		basePath string
		path     string
		want     string
	}{
		{"plain", "http://localhost:8095", "", "/a/xyz9876", "http://localhost:8095/a/xyz9876"},
		{"trailing slash on base", "https://proxy.example.com/", "", "/abc1234", "https://proxy.example.com/abc1234"},
		{"base path", "https://example.com", "/imgur", "/i/abc1234.png", "https://example.com/imgur/i/abc1234.png"},
		{"path without leading slash", "https://example.com", "", "abc1234", "https://example.com/abc1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Proxy.PublicBaseURL = tt.baseURL
			cfg.Proxy.BasePath = tt.basePath

			if got := cfg.PublicURL(tt.path); got != tt.want {
				t.Errorf("PublicURL(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func assertStringEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
