// Package config defines the gate configuration structure.
package config

import (
	"fmt"

	"github.com/yndnr/ptagate/internal/infra/confloader"
)

// Load reads defaults, the file at path (if any), PTAGATE_ environment
// variables and finally overrides (dotted keys, usually from flags), then
// verifies the result.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	cfg, err := LoadUnverified(path, overrides)
	if err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadUnverified is Load without Verify.
func LoadUnverified(path string, overrides map[string]any) (*ServerConfig, error) {
	cfg := Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
