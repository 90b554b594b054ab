package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/habitkit/go-habitkit/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habitkit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
environment: staging
api:
  url: https://api.staging.habitkit.app
  request_timeout: 10s
  max_retries: 4
  retry_base_delay: 100ms
sentry:
  dsn: https://abc@o1.ingest.sentry.io/1
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "staging")
	}
	if cfg.API.URL != "https://api.staging.habitkit.app" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %s, want 10s", cfg.API.RequestTimeout)
	}
	if cfg.API.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", cfg.API.MaxRetries)
	}
	if cfg.API.RetryBaseDelay != 100*time.Millisecond {
		t.Errorf("RetryBaseDelay = %s, want 100ms", cfg.API.RetryBaseDelay)
	}
	if cfg.Sentry.DSN == "" {
		t.Error("Sentry.DSN empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  url: http://localhost:3000
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Environment != "local" {
		t.Errorf("Environment = %q, want default %q", cfg.Environment, "local")
	}
	if cfg.API.BasePath != "/api/v1" {
		t.Errorf("BasePath = %q, want default %q", cfg.API.BasePath, "/api/v1")
	}
	if cfg.API.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %s, want default 15s", cfg.API.RequestTimeout)
	}
	if cfg.API.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want default 2", cfg.API.MaxRetries)
	}
	if cfg.API.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %s, want default 250ms", cfg.API.RetryBaseDelay)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("HABITKIT_API_URL", "https://api.habitkit.app")
	t.Setenv("HABITKIT_ENV", "production")
	t.Setenv("HABITKIT_REQUEST_TIMEOUT", "5s")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.URL != "https://api.habitkit.app" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
	}
	if cfg.API.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %s, want 5s", cfg.API.RequestTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api:
  url: http://localhost:3000
  max_retries: 1
`)
	t.Setenv("HABITKIT_MAX_RETRIES", "5")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want env override 5", cfg.API.MaxRetries)
	}
}

func TestConfigEnvVarSelectsFile(t *testing.T) {
	path := writeConfig(t, `
api:
  url: http://localhost:4000
`)
	t.Setenv("HABITKIT_CONFIG", path)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.URL != "http://localhost:4000" {
		t.Errorf("API.URL = %q, want the HABITKIT_CONFIG file", cfg.API.URL)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "url without scheme",
			yaml: `
api:
  url: localhost:3000
`,
			wantErr: "must start with http",
		},
		{
			name: "negative retries",
			yaml: `
api:
  url: http://localhost:3000
  max_retries: -1
`,
			wantErr: "max_retries",
		},
		{
			name: "zero timeout",
			yaml: `
api:
  url: http://localhost:3000
  request_timeout: 0s
`,
			wantErr: "request_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit path")
	}
}
