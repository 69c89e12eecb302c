// Package config provides gate configuration for ptagate.
//
// This package defines the configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (keys, locations, upstream, TLS files)
//   - sanitize.go: Log sanitization (hide keys and IVs)
//   - load.go: Loading from file and environment via confloader
//
// Configuration errors are fatal at startup. On reload they are logged and
// the previous configuration stays in effect.
package config
