package config

import (
	"time"
)

// RegctlConfig is the top-level configuration structure for regctl.
type RegctlConfig struct {
	Bootstrap    BootstrapConfig    `yaml:"bootstrap"`
	HTTP         HTTPConfig         `yaml:"http"`
	Registration RegistrationConfig `yaml:"registration"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// BootstrapFormat selects how credentials are posted to the bootstrap endpoint.
type BootstrapFormat string

const (
	// BootstrapFormatForm posts first_name, last_name and password URL-encoded.
	BootstrapFormatForm BootstrapFormat = "form"
	// BootstrapFormatLLSD posts the same fields as an LLSD map together with
	// submit="Get Capabilities".
	BootstrapFormatLLSD BootstrapFormat = "llsd"
)

// BootstrapConfig locates the endpoint that hands out capability URLs.
type BootstrapConfig struct {
	URL    string          `yaml:"url"`
	Format BootstrapFormat `yaml:"format,omitempty"`
}

// HTTPConfig tunes the transport used for every request.
type HTTPConfig struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout            time.Duration `yaml:"timeout,omitempty"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify,omitempty"`
	UserAgent          string        `yaml:"userAgent,omitempty"`
}

// RegistrationConfig holds the data used to build the check_name and
// create_user requests.
type RegistrationConfig struct {
	UsernamePrefix string `yaml:"usernamePrefix"`
	// SuffixMin and SuffixMax bound the random username suffix, [min, max).
	SuffixMin   int    `yaml:"suffixMin"`
	SuffixMax   int    `yaml:"suffixMax"`
	EmailDomain string `yaml:"emailDomain"`
	Password    string `yaml:"password"`
	DOB         string `yaml:"dob"`

	// GroupName, when set, adds the created account to this group.
	GroupName string `yaml:"groupName,omitempty"`

	StartRegionName string   `yaml:"startRegionName,omitempty"`
	LimitedToEstate *int     `yaml:"limitedToEstate,omitempty"`
	StartPosition   *Vector3 `yaml:"startPosition,omitempty"`
	StartLookAt     *Vector3 `yaml:"startLookAt,omitempty"`
}

// Vector3 is a region-local position or direction.
type Vector3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}
