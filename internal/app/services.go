package app

import (
	"fmt"

	"regctl/internal/regapi"
	"regctl/internal/walker"
)

// Services holds everything the commands share once configuration is loaded
type Services struct {
	HTTPClient    regapi.HTTPClient
	ClientOptions []regapi.Option
	Settings      walker.Settings
}

// InitializeServices builds the HTTP transport and walk settings from the
// loaded configuration.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.RegctlConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	rc := cfg.RegctlConfig

	httpClient := regapi.NewHTTPClient(rc.HTTP.InsecureSkipVerify)

	opts := []regapi.Option{regapi.WithTimeout(rc.HTTP.Timeout)}
	if rc.HTTP.UserAgent != "" {
		opts = append(opts, regapi.WithUserAgent(rc.HTTP.UserAgent))
	}

	return &Services{
		HTTPClient:    httpClient,
		ClientOptions: opts,
		Settings:      walker.SettingsFromConfig(*rc),
	}, nil
}

// NewClient creates a registration API client reporting to observer.
func (s *Services) NewClient(observer regapi.Observer) *regapi.Client {
	opts := append([]regapi.Option{}, s.ClientOptions...)
	if observer != nil {
		opts = append(opts, regapi.WithObserver(observer))
	}
	return regapi.NewClient(s.HTTPClient, opts...)
}
