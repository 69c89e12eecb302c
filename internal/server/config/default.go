// Package config defines the gate configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultUpstreamTimeout = 60 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default gate configuration. It has no keys and no
// upstream, so it does not pass Verify on its own. With no locations
// configured every path is guarded using the query string.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Upstream: UpstreamSection{
			Timeout: DefaultUpstreamTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}
