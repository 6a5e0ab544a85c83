package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd
var osLookupEnv = os.LookupEnv

const (
	userConfigDir    = ".config/regctl"
	projectConfigDir = ".regctl"
	configFileName   = "config.yaml"
	dotEnvFileName   = ".env"
)

// Environment variables read after all config files.
const (
	EnvBootstrapURL    = "REGCTL_BOOTSTRAP_URL"
	EnvBootstrapFormat = "REGCTL_BOOTSTRAP_FORMAT"
	EnvHTTPTimeout     = "REGCTL_HTTP_TIMEOUT"
	EnvInsecure        = "REGCTL_INSECURE"
	EnvUsernamePrefix  = "REGCTL_USERNAME_PREFIX"
	EnvEmailDomain     = "REGCTL_EMAIL_DOMAIN"
	EnvAccountPassword = "REGCTL_ACCOUNT_PASSWORD"
	EnvDOB             = "REGCTL_DOB"
	EnvGroupName       = "REGCTL_GROUP_NAME"
	EnvLogLevel        = "REGCTL_LOG_LEVEL"
)

// LoadConfig loads the regctl configuration by layering default, user, project
// and explicit file settings, then environment overrides. A .env file in the
// working directory is loaded into the environment first; variables already set
// in the process environment win over it.
//
// explicitPath may be empty. When set, the file must exist.
func LoadConfig(explicitPath string) (RegctlConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// Log this error but don't fail; user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		config, err = mergeOptionalFile(config, userConfigPath, "user")
		if err != nil {
			return RegctlConfig{}, err
		}
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		config, err = mergeOptionalFile(config, projectConfigPath, "project")
		if err != nil {
			return RegctlConfig{}, err
		}
	}

	// 4. Explicit --config file
	if explicitPath != "" {
		explicitConfig, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return RegctlConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicitConfig)
	}

	// 5. Environment, seeded from .env
	if err := loadDotEnv(); err != nil {
		return RegctlConfig{}, err
	}
	config, err = applyEnv(config)
	if err != nil {
		return RegctlConfig{}, err
	}

	return config, nil
}

func mergeOptionalFile(base RegctlConfig, path, layer string) (RegctlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return RegctlConfig{}, fmt.Errorf("error loading %s config from %s: %w", layer, path, err)
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

var loadDotEnv = func() error {
	wd, err := osGetwd()
	if err != nil {
		return nil
	}
	err = godotenv.Load(filepath.Join(wd, dotEnvFileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", dotEnvFileName, err)
	}
	return nil
}

// loadConfigFromFile loads a RegctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (RegctlConfig, error) {
	var config RegctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return RegctlConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return RegctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in the
// overlay leave the base untouched.
func mergeConfigs(base, overlay RegctlConfig) RegctlConfig {
	merged := base

	if overlay.Bootstrap.URL != "" {
		merged.Bootstrap.URL = overlay.Bootstrap.URL
	}
	if overlay.Bootstrap.Format != "" {
		merged.Bootstrap.Format = overlay.Bootstrap.Format
	}

	if overlay.HTTP.Timeout != 0 {
		merged.HTTP.Timeout = overlay.HTTP.Timeout
	}
	if overlay.HTTP.InsecureSkipVerify {
		merged.HTTP.InsecureSkipVerify = true
	}
	if overlay.HTTP.UserAgent != "" {
		merged.HTTP.UserAgent = overlay.HTTP.UserAgent
	}

	reg := overlay.Registration
	if reg.UsernamePrefix != "" {
		merged.Registration.UsernamePrefix = reg.UsernamePrefix
	}
	if reg.SuffixMin != 0 {
		merged.Registration.SuffixMin = reg.SuffixMin
	}
	if reg.SuffixMax != 0 {
		merged.Registration.SuffixMax = reg.SuffixMax
	}
	if reg.EmailDomain != "" {
		merged.Registration.EmailDomain = reg.EmailDomain
	}
	if reg.Password != "" {
		merged.Registration.Password = reg.Password
	}
	if reg.DOB != "" {
		merged.Registration.DOB = reg.DOB
	}
	if reg.GroupName != "" {
		merged.Registration.GroupName = reg.GroupName
	}
	if reg.StartRegionName != "" {
		merged.Registration.StartRegionName = reg.StartRegionName
	}
	if reg.LimitedToEstate != nil {
		merged.Registration.LimitedToEstate = reg.LimitedToEstate
	}
	if reg.StartPosition != nil {
		merged.Registration.StartPosition = reg.StartPosition
	}
	if reg.StartLookAt != nil {
		merged.Registration.StartLookAt = reg.StartLookAt
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}

	return merged
}

func applyEnv(config RegctlConfig) (RegctlConfig, error) {
	if v, ok := osLookupEnv(EnvBootstrapURL); ok && v != "" {
		config.Bootstrap.URL = v
	}
	if v, ok := osLookupEnv(EnvBootstrapFormat); ok && v != "" {
		config.Bootstrap.Format = BootstrapFormat(strings.ToLower(v))
	}
	if v, ok := osLookupEnv(EnvHTTPTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return RegctlConfig{}, fmt.Errorf("invalid %s %q: %w", EnvHTTPTimeout, v, err)
		}
		config.HTTP.Timeout = d
	}
	if v, ok := osLookupEnv(EnvInsecure); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return RegctlConfig{}, fmt.Errorf("invalid %s %q: %w", EnvInsecure, v, err)
		}
		config.HTTP.InsecureSkipVerify = b
	}
	if v, ok := osLookupEnv(EnvUsernamePrefix); ok && v != "" {
		config.Registration.UsernamePrefix = v
	}
	if v, ok := osLookupEnv(EnvEmailDomain); ok && v != "" {
		config.Registration.EmailDomain = v
	}
	if v, ok := osLookupEnv(EnvAccountPassword); ok && v != "" {
		config.Registration.Password = v
	}
	if v, ok := osLookupEnv(EnvDOB); ok && v != "" {
		config.Registration.DOB = v
	}
	if v, ok := osLookupEnv(EnvGroupName); ok && v != "" {
		config.Registration.GroupName = v
	}
	if v, ok := osLookupEnv(EnvLogLevel); ok && v != "" {
		config.Logging.Level = v
	}
	return config, nil
}

// Validate checks the settings the walk cannot run without.
func (c RegctlConfig) Validate() error {
	if c.Bootstrap.URL == "" {
		return errors.New("bootstrap url must not be empty")
	}
	u, err := url.Parse(c.Bootstrap.URL)
	if err != nil {
		return fmt.Errorf("invalid bootstrap url %q: %w", c.Bootstrap.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("bootstrap url %q must use http or https", c.Bootstrap.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("bootstrap url %q has no host", c.Bootstrap.URL)
	}

	switch c.Bootstrap.Format {
	case BootstrapFormatForm, BootstrapFormatLLSD:
	default:
		return fmt.Errorf("unknown bootstrap format %q (want %q or %q)", c.Bootstrap.Format, BootstrapFormatForm, BootstrapFormatLLSD)
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %s", c.HTTP.Timeout)
	}

	reg := c.Registration
	if reg.SuffixMin < 0 || reg.SuffixMax <= reg.SuffixMin {
		return fmt.Errorf("invalid username suffix range [%d, %d)", reg.SuffixMin, reg.SuffixMax)
	}
	if reg.UsernamePrefix == "" {
		return errors.New("username prefix must not be empty")
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
