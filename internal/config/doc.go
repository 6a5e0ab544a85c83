// Package config provides configuration management for regctl.
//
// Configuration is loaded from multiple sources and merged in a specific
// order, with later sources overriding earlier ones:
//
//  1. Default configuration (compiled in)
//  2. User configuration (~/.config/regctl/config.yaml)
//  3. Project configuration (./.regctl/config.yaml)
//  4. An explicit file passed with --config
//  5. REGCTL_* environment variables, seeded from ./.env
//
// Command-line flags are applied on top by the cmd package.
//
// # Configuration Structure
//
//	bootstrap:
//	  url: "https://127.0.0.1:9000/get_reg_capabilities"
//	  format: "form"          # or "llsd"
//	http:
//	  timeout: "30s"          # zero or absent means no timeout
//	  insecureSkipVerify: false
//	registration:
//	  usernamePrefix: "benny"
//	  suffixMin: 100
//	  suffixMax: 10000
//	  emailDomain: "ben.com"
//	  password: "123123abc"
//	  dob: "1980-01-01"
//	  groupName: ""           # add the new account to this group
//	  startRegionName: ""
//	  limitedToEstate: 1
//	  startPosition: {x: 128, y: 128, z: 25}
//	  startLookAt: {x: 1, y: 0, z: 0}
//	logging:
//	  level: "info"
//
// Merging is field by field: a zero value in a later layer never clears a
// value set by an earlier one.
package config
