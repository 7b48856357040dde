package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:8000/api"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Auth:     AuthConfig{TokenSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_AcceptsLocalMinimum(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.App.PollInterval != 5*time.Second {
		t.Fatalf("expected 5s poll default, got %v", c.App.PollInterval)
	}
	if c.Auth.SessionTTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl default, got %v", c.Auth.SessionTTL)
	}
	if c.Upstream.Timeout != 15*time.Second {
		t.Fatalf("expected 15s upstream timeout default, got %v", c.Upstream.Timeout)
	}
}

func TestValidate_RejectsRelativeUpstreamURL(t *testing.T) {
	c := validConfig()
	c.Upstream.BaseURL = "localhost:8000/api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for relative upstream URL")
	}
}

func TestValidate_ProductionRequiresIssuerAndOrigins(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without issuer/audience/origins")
	}

	c.Auth.TokenIssuer = "calls-api"
	c.Auth.TokenAudience = "dashboard"
	c.App.CORSOrigins = []string{"https://dashboard.example.com"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
