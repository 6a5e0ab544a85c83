package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"regctl/internal/config"
	"regctl/internal/regapi"
	"regctl/internal/walker"
	"regctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs regctl
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the layered configuration, applies the command-line
// overrides and initializes logging and services.
func NewApplication(cfg *Config) (*Application, error) {
	return newApplication(cfg, os.Stderr)
}

func newApplication(cfg *Config, logOut io.Writer) (*Application, error) {
	regctlCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load regctl configuration: %w", err)
	}
	cfg.applyOverrides(&regctlCfg)

	if err := regctlCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(regctlCfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.InitForCLI(level, logOut)
	if cfg.ConfigPath != "" {
		logging.Info("Bootstrap", "Loaded configuration from %s", cfg.ConfigPath)
	} else {
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	cfg.RegctlConfig = &regctlCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Walk runs one capability walk for creds, echoing everything to out.
func (a *Application) Walk(ctx context.Context, out io.Writer, creds regapi.Credentials) (walker.Result, error) {
	return runWalk(ctx, out, a.services, creds)
}

// ServeMCP serves the registration tools on stdio until ctx is cancelled.
func (a *Application) ServeMCP(ctx context.Context, version string) error {
	return serveMCP(ctx, version, a.services)
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}
