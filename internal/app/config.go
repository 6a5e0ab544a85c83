package app

import (
	"regctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug lowers the log level to DEBUG.
	Debug bool

	// ConfigPath is an optional explicit configuration file.
	ConfigPath string

	// Command-line overrides, applied after every configuration layer.
	BootstrapURL string
	GroupName    string
	Insecure     bool

	// RegctlConfig is filled in by NewApplication.
	RegctlConfig *config.RegctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}

// applyOverrides copies set command-line values onto the loaded configuration.
func (c *Config) applyOverrides(cfg *config.RegctlConfig) {
	if c.BootstrapURL != "" {
		cfg.Bootstrap.URL = c.BootstrapURL
	}
	if c.GroupName != "" {
		cfg.Registration.GroupName = c.GroupName
	}
	if c.Insecure {
		cfg.HTTP.InsecureSkipVerify = true
	}
	if c.Debug {
		cfg.Logging.Level = "debug"
	}
}
