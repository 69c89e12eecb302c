// Package upstream forwards authorized requests to the origin server.
package upstream

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
	"github.com/yndnr/ptagate/internal/infra/tlsroots"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/httpserver/handler"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
)

// ErrorCounter counts failed upstream round trips.
type ErrorCounter interface {
	IncUpstreamError()
}

// Proxy is a reverse proxy to a single origin.
type Proxy struct {
	target *url.URL
	proxy  *httputil.ReverseProxy
	errors ErrorCounter
	logger *slog.Logger
}

// New creates a Proxy for cfg. counter may be nil.
func New(cfg config.UpstreamSection, counter ErrorCounter, log *slog.Logger) (*Proxy, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, domain.ErrConfigInvalid.WithDetails("upstream.url").WithCause(err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, domain.ErrConfigInvalid.WithDetails("upstream.url must be absolute")
	}

	p := &Proxy{
		target: target,
		errors: counter,
		logger: log,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout
	transport.DialContext = (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext

	tlsConfig, err := tlsroots.UpstreamConfig(cfg.CAFile)
	if err != nil {
		return nil, domain.ErrConfigInvalid.WithDetails("upstream.ca_file").WithCause(err)
	}
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	p.proxy = &httputil.ReverseProxy{
		Rewrite:      p.rewrite,
		Transport:    transport,
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// Target returns the origin URL.
func (p *Proxy) Target() *url.URL {
	return p.target
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.SetXForwarded()
	pr.Out.Host = pr.In.Host

	if id := logger.RequestIDFromContext(pr.In.Context()); id != "" {
		pr.Out.Header.Set("X-Request-ID", id)
	}
	pr.Out.Header.Add("Via", "1.1 "+buildinfo.UserAgent())
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is left to answer.
		w.WriteHeader(499)
		return
	}

	if p.errors != nil {
		p.errors.IncUpstreamError()
	}
	p.logger.Error("upstream request failed",
		"request_id", logger.RequestIDFromContext(r.Context()),
		"upstream", p.target.Host,
		"path", r.URL.Path,
		"error", err,
	)
	handler.WriteError(w, r, domain.ErrUpstream.WithCause(err))
}
