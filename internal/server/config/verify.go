// Package config defines the gate configuration structure.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"

	sockaddr "github.com/hashicorp/go-sockaddr"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/core/pta"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyUpstream(&cfg.Upstream); err != nil {
		return err
	}
	if err := VerifyPTA(&cfg.PTA); err != nil {
		return err
	}
	if err := verifyRateLimit(&cfg.RateLimit); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

// VerifyPTA validates only the token section. The CLI uses it for offline
// verification, which needs neither a listener nor an upstream.
func VerifyPTA(cfg *PTASection) error {
	if _, err := pta.NewKeyring(cfg.Primary(), cfg.Secondary()); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Locations))
	for i, loc := range cfg.Locations {
		if !strings.HasPrefix(loc.PathPrefix, "/") {
			return invalid("pta.locations[%d].path_prefix must start with '/'", i)
		}
		if seen[loc.PathPrefix] {
			return invalid("pta.locations[%d].path_prefix %q is duplicated", i, loc.PathPrefix)
		}
		seen[loc.PathPrefix] = true

		if _, err := pta.ParseAuthMethods(loc.AuthMethods); err != nil {
			return invalid("pta.locations[%d].auth_methods: %v", i, err)
		}
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return invalid("server.http.addr is required")
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return invalid("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return invalid("cannot read TLS file: %v", err)
		}
	}

	if cfg.ShutdownTimeout <= 0 {
		return invalid("server.shutdown_timeout must be positive")
	}
	return nil
}

func verifyUpstream(cfg *UpstreamSection) error {
	if cfg.URL == "" {
		return invalid("upstream.url is required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return invalid("upstream.url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("upstream.url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return invalid("upstream.url has no host")
	}

	if cfg.Timeout < 0 {
		return invalid("upstream.timeout must not be negative")
	}

	if cfg.CAFile != "" {
		if u.Scheme != "https" {
			return invalid("upstream.ca_file needs an https upstream.url")
		}
		if _, err := os.Stat(cfg.CAFile); err != nil {
			return invalid("cannot read upstream.ca_file: %v", err)
		}
	}
	return nil
}

func verifyRateLimit(cfg *RateLimitSection) error {
	if cfg.RequestsPerSecond < 0 {
		return invalid("ratelimit.requests_per_second must not be negative")
	}
	if cfg.Burst < 0 {
		return invalid("ratelimit.burst must not be negative")
	}
	for _, p := range cfg.TrustedProxies {
		if !isIPOrCIDR(strings.TrimSpace(p)) {
			return invalid("ratelimit.trusted_proxies: %q is not an address or CIDR block", p)
		}
	}
	return nil
}

// isIPOrCIDR rejects host names up front, since sockaddr would look them
// up in DNS.
func isIPOrCIDR(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	if _, _, err := net.ParseCIDR(s); err != nil {
		return false
	}
	_, err := sockaddr.NewIPAddr(s)
	return err == nil
}

func verifyLog(cfg *LogSection) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return invalid("log.level %q is not a valid level", cfg.Level)
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text":
		return nil
	}
	return invalid("log.format must be json or text, got %q", cfg.Format)
}

func invalid(format string, args ...any) error {
	return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf(format, args...))
}
