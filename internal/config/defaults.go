package config

const (
	DefaultBootstrapURL   = "https://127.0.0.1:9000/get_reg_capabilities"
	DefaultUsernamePrefix = "benny"
	DefaultSuffixMin      = 100
	DefaultSuffixMax      = 10000
	DefaultEmailDomain    = "ben.com"
	DefaultPassword       = "123123abc"
	DefaultDOB            = "1980-01-01"
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() RegctlConfig {
	return RegctlConfig{
		Bootstrap: BootstrapConfig{
			URL:    DefaultBootstrapURL,
			Format: BootstrapFormatForm,
		},
		HTTP: HTTPConfig{
			UserAgent: "regctl",
		},
		Registration: RegistrationConfig{
			UsernamePrefix: DefaultUsernamePrefix,
			SuffixMin:      DefaultSuffixMin,
			SuffixMax:      DefaultSuffixMax,
			EmailDomain:    DefaultEmailDomain,
			Password:       DefaultPassword,
			DOB:            DefaultDOB,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
