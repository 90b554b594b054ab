package cli

import (
	"io"
	"os"
	"time"

	"github.com/habitkit/go-habitkit/internal/client"
	"github.com/habitkit/go-habitkit/internal/config"
	"github.com/habitkit/go-habitkit/internal/errreport"
	"github.com/habitkit/go-habitkit/internal/keyring"
	"github.com/habitkit/go-habitkit/internal/transport"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields with the With* options.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader  ConfigLoader
	ClientFactory ClientFactory
}

// ConfigLoader loads the client configuration.
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
}

// ClientFactory creates the API client from configuration.
type ClientFactory interface {
	NewClient(cfg *config.Config) (*client.Client, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the input reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithClientFactory sets the client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// DefaultEnv creates an Env with production defaults.
func DefaultEnv(opts ...EnvOption) *Env {
	e := &Env{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Stdin:         os.Stdin,
		Getenv:        os.Getenv,
		Now:           time.Now,
		ConfigLoader:  fileConfigLoader{},
		ClientFactory: defaultClientFactory{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fileConfigLoader loads configuration from disk and environment.
type fileConfigLoader struct{}

func (fileConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

// defaultClientFactory wires the production client: file-backed keyring,
// timeout transport, terminal notifier, Sentry forwarding when configured.
type defaultClientFactory struct{}

func (defaultClientFactory) NewClient(cfg *config.Config) (*client.Client, error) {
	kr, err := keyring.DefaultFile()
	if err != nil {
		return nil, err
	}

	reporter := errreport.NewReporter(
		errreport.WithNotifier(TerminalNotifier{Out: os.Stderr}),
		errreport.WithSentry(cfg.Sentry.DSN != ""),
	)

	return client.New(cfg.API.URL,
		client.WithBasePath(cfg.API.BasePath),
		client.WithKeyring(kr),
		client.WithReporter(reporter),
		client.WithTransport(transport.New(transport.WithTimeout(cfg.API.RequestTimeout))),
		client.WithRetry(retryConfig(cfg)),
	), nil
}
