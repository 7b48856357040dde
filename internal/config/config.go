package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the dashboard gateway process.
// All values must come from env (or an env-file loaded by the process
// runner). No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Env  string
	Port int

	// CORSOrigins are the browser origins allowed to call the gateway.
	CORSOrigins []string

	// PollInterval drives the background notification poll.
	PollInterval time.Duration
}

type UpstreamConfig struct {
	// BaseURL points at the remote call-records REST API.
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	// TokenSecret is the HS256 secret shared with the remote API; login
	// tokens are verified with it before a session is created.
	TokenSecret   string
	TokenIssuer   string
	TokenAudience string

	SessionTTL time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	c.App.PollInterval = mustDuration("POLL_INTERVAL")

	c.Upstream.BaseURL = strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL"))
	c.Upstream.Timeout = mustDuration("UPSTREAM_TIMEOUT")

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.TokenSecret = os.Getenv("AUTH_TOKEN_SECRET")
	c.Auth.TokenIssuer = strings.TrimSpace(os.Getenv("AUTH_TOKEN_ISSUER"))
	c.Auth.TokenAudience = strings.TrimSpace(os.Getenv("AUTH_TOKEN_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.SessionTTL = mustDuration("SESSION_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PollInterval <= 0 {
		c.App.PollInterval = 5 * time.Second
	}
	if len(c.App.CORSOrigins) == 0 && c.IsProduction() {
		errs = append(errs, errors.New("CORS_ORIGINS is required in production"))
	}

	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("UPSTREAM_BASE_URL is required"))
	} else if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", c.Upstream.BaseURL))
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 15 * time.Second
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("AUTH_TOKEN_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.TokenIssuer == "" {
			errs = append(errs, errors.New("AUTH_TOKEN_ISSUER is required in production"))
		}
		if c.Auth.TokenAudience == "" {
			errs = append(errs, errors.New("AUTH_TOKEN_AUDIENCE is required in production"))
		}
	}
	if c.Auth.SessionTTL <= 0 {
		// Sessions expire on their own; no indefinite logins.
		c.Auth.SessionTTL = 12 * time.Hour
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
