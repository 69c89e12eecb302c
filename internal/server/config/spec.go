// Package config defines the gate configuration structure.
package config

import "time"

// ServerConfig is the root configuration for ptagate.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server" json:"server" yaml:"server"`
	Upstream  UpstreamSection  `koanf:"upstream" json:"upstream" yaml:"upstream"`
	PTA       PTASection       `koanf:"pta" json:"pta" yaml:"pta"`
	RateLimit RateLimitSection `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	Log       LogSection       `koanf:"log" json:"log" yaml:"log"`
	Metrics   MetricsSection   `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// ServerSection configures the listener.
type ServerSection struct {
	HTTP            HTTPConfig    `koanf:"http" json:"http" yaml:"http"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// AdminSocket is the Unix socket for local admin commands. Empty disables it.
	AdminSocket string `koanf:"admin_socket" json:"admin_socket" yaml:"admin_socket"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr" json:"addr" yaml:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" json:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" json:"tls_key_file" yaml:"tls_key_file"`
}

// UpstreamSection configures the origin that authorized requests are
// forwarded to.
type UpstreamSection struct {
	URL string `koanf:"url" json:"url" yaml:"url"`

	// Timeout bounds the wait for upstream response headers. Zero means no limit.
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`

	// CAFile adds PEM roots trusted for an https upstream, on top of the
	// system pool.
	CAFile string `koanf:"ca_file" json:"ca_file" yaml:"ca_file"`
}

// PTASection configures token validation.
type PTASection struct {
	// Key/IV pairs, 32 hex characters each. The secondary pair is optional.
	KeyPrimary   string `koanf:"key_primary" json:"key_primary" yaml:"key_primary"`
	IVPrimary    string `koanf:"iv_primary" json:"iv_primary" yaml:"iv_primary"`
	KeySecondary string `koanf:"key_secondary" json:"key_secondary" yaml:"key_secondary"`
	IVSecondary  string `koanf:"iv_secondary" json:"iv_secondary" yaml:"iv_secondary"`

	// StrictHex rejects tokens containing non-hex characters.
	StrictHex bool `koanf:"strict_hex" json:"strict_hex" yaml:"strict_hex"`

	Locations []LocationConfig `koanf:"locations" json:"locations" yaml:"locations"`
}

// LocationConfig enables validation for a path prefix.
type LocationConfig struct {
	PathPrefix string `koanf:"path_prefix" json:"path_prefix" yaml:"path_prefix"`
	Enabled    bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// AuthMethods lists token sources: "qs", "cookie" or both.
	// Empty means query string only.
	AuthMethods []string `koanf:"auth_methods" json:"auth_methods" yaml:"auth_methods"`
}

// RateLimitSection configures per-client rate limiting.
type RateLimitSection struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `koanf:"burst" json:"burst" yaml:"burst"`

	// TrustedProxies lists addresses or CIDR blocks whose X-Forwarded-For
	// and X-Real-IP headers name the client. Other peers are limited by
	// their own address.
	TrustedProxies []string `koanf:"trusted_proxies" json:"trusted_proxies,omitempty" yaml:"trusted_proxies,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
}
