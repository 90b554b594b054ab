package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/habitkit/go-habitkit/internal/apierr"
	"github.com/habitkit/go-habitkit/internal/client"
	"github.com/habitkit/go-habitkit/internal/config"
)

// retryConfig maps the loaded configuration onto the client retry policy.
func retryConfig(cfg *config.Config) apierr.RetryConfig {
	return apierr.RetryConfig{
		MaxRetries: cfg.API.MaxRetries,
		BaseDelay:  cfg.API.RetryBaseDelay,
		MaxDelay:   8 * cfg.API.RetryBaseDelay,
	}
}

// newClient loads configuration and builds the API client.
func newClient(env *Env, cfgPath string) (*client.Client, error) {
	cfg, err := env.ConfigLoader.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrConfig)
	}
	c, err := env.ClientFactory.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrConfig)
	}
	return c, nil
}

// promptLine reads one line from env.Stdin after printing prompt.
func promptLine(env *Env, prompt string) (string, error) {
	fmt.Fprint(env.Stderr, prompt)
	line, err := bufio.NewReader(env.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
