// Package config loads client configuration from a YAML file and
// environment variables with a predictable precedence: explicit path, then
// HABITKIT_CONFIG, then ./habitkit.yaml, then environment only.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root client configuration.
type Config struct {
	// Environment labels logs and Sentry events (local, staging, production).
	Environment string `yaml:"environment" env:"HABITKIT_ENV" env-default:"local"`

	API    APIConfig    `yaml:"api"`
	Sentry SentryConfig `yaml:"sentry"`
}

// APIConfig describes the backend endpoint and request policy.
type APIConfig struct {
	// URL is the backend origin, e.g. https://api.habitkit.app.
	URL string `yaml:"url" env:"HABITKIT_API_URL" env-required:"true"`
	// BasePath is the versioned path prefix joined to every endpoint.
	BasePath string `yaml:"base_path" env:"HABITKIT_API_BASE_PATH" env-default:"/api/v1"`
	// RequestTimeout is the hard per-request response deadline.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HABITKIT_REQUEST_TIMEOUT" env-default:"15s"`
	// MaxRetries bounds retries shared across the 401-refresh and
	// transient-network paths.
	MaxRetries int `yaml:"max_retries" env:"HABITKIT_MAX_RETRIES" env-default:"2"`
	// RetryBaseDelay is the initial backoff delay between retries.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"HABITKIT_RETRY_BASE_DELAY" env-default:"250ms"`
}

// SentryConfig enables error forwarding when a DSN is present.
type SentryConfig struct {
	DSN string `yaml:"dsn" env:"SENTRY_DSN"`
}

// Validate checks constraints cleanenv tags cannot express.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("api url %q must start with http:// or https://", c.API.URL)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.API.MaxRetries)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.API.RequestTimeout)
	}
	return nil
}

// MustLoad is Load with panic on error, for main wiring.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load resolves the config source in precedence order and reads it.
// When no file exists, environment variables alone must satisfy the
// required fields.
func Load(path string) (*Config, error) {
	var cfg Config

	resolved := path
	if resolved == "" {
		resolved = os.Getenv("HABITKIT_CONFIG")
	}
	if resolved == "" {
		if _, err := os.Stat("habitkit.yaml"); err == nil {
			resolved = "habitkit.yaml"
		}
	}

	if resolved != "" {
		if err := cleanenv.ReadConfig(resolved, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", resolved, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
