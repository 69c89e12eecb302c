package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	sockaddr "github.com/hashicorp/go-sockaddr"
)

// TrustedProxies holds the peers whose X-Forwarded-For and X-Real-IP
// headers are believed. A nil *TrustedProxies trusts nobody.
type TrustedProxies struct {
	addrs []sockaddr.IPAddr
}

// ParseTrustedProxies parses IP addresses and CIDR blocks. An empty list
// returns nil, so only the connection's peer address is used.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	t := &TrustedProxies{addrs: make([]sockaddr.IPAddr, 0, len(entries))}
	for _, e := range entries {
		addr, err := parseIPAddr(strings.TrimSpace(e))
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		t.addrs = append(t.addrs, addr)
	}
	return t, nil
}

// parseIPAddr accepts only a literal IP or CIDR block. sockaddr would
// otherwise resolve host:port strings through DNS.
func parseIPAddr(s string) (sockaddr.IPAddr, error) {
	if net.ParseIP(s) == nil {
		if _, _, err := net.ParseCIDR(s); err != nil {
			return nil, fmt.Errorf("not an IP address or CIDR block")
		}
	}
	return sockaddr.NewIPAddr(s)
}

func (t *TrustedProxies) trusts(ip string) bool {
	if t == nil || net.ParseIP(ip) == nil {
		return false
	}
	addr, err := sockaddr.NewIPAddr(ip)
	if err != nil {
		return false
	}
	for _, a := range t.addrs {
		if a.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address rate limiting and audit logs attribute r to.
// Forwarding headers count only when the peer is trusted. X-Forwarded-For
// is then read right to left and the first hop that is not itself a
// trusted proxy wins.
func (t *TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !t.trusts(peer) {
		return peer
	}

	if hops := forwardedHops(r); len(hops) > 0 {
		for i := len(hops) - 1; i >= 0; i-- {
			if net.ParseIP(hops[i]) == nil {
				// everything left of a garbled hop is unverifiable
				return peer
			}
			if !t.trusts(hops[i]) {
				return hops[i]
			}
		}
		return hops[0]
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return peer
}

// forwardedHops flattens every X-Forwarded-For header into one list.
func forwardedHops(r *http.Request) []string {
	var hops []string
	for _, h := range r.Header.Values("X-Forwarded-For") {
		for _, v := range strings.Split(h, ",") {
			if v = strings.TrimSpace(v); v != "" {
				hops = append(hops, v)
			}
		}
	}
	return hops
}

func remoteHost(r *http.Request) string {
	// net.SplitHostPort handles bracketed IPv6 like [::1]:8080
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
