// Package config defines the gate configuration structure.
package config

import "strings"

// Sanitize returns a copy of the config with keys and IVs masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	sanitized.PTA.KeyPrimary = maskSecret(cfg.PTA.KeyPrimary)
	sanitized.PTA.IVPrimary = maskSecret(cfg.PTA.IVPrimary)
	sanitized.PTA.KeySecondary = maskSecret(cfg.PTA.KeySecondary)
	sanitized.PTA.IVSecondary = maskSecret(cfg.PTA.IVSecondary)

	// the slice is shared with cfg otherwise
	sanitized.PTA.Locations = append([]LocationConfig(nil), cfg.PTA.Locations...)

	return &sanitized
}

// maskSecret hides every character of a non-empty secret. Key material is
// short enough that revealing any of it matters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", len(s))
}
