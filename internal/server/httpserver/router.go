package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/server/httpserver/handler"
	"github.com/yndnr/ptagate/internal/telemetry/metric"
	"github.com/yndnr/ptagate/pkg/reqid"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Store holds the current validator.
	Store *pta.Store

	// Guard authorizes proxied requests.
	Guard *Guard

	// Upstream receives authorized requests.
	Upstream http.Handler

	// Metrics records request and validation metrics.
	Metrics *metric.Registry

	// MetricsEnabled exposes /-/metrics.
	MetricsEnabled bool

	// Limiter applies per-client rate limiting; nil disables it.
	Limiter *ClientLimiter

	// TrustedProxies may set the client address through forwarding
	// headers; nil means the peer address is always used.
	TrustedProxies *TrustedProxies

	// RequestIDs generates request IDs; nil uses a fresh generator.
	RequestIDs *reqid.Generator

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the gate's handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	gen := cfg.RequestIDs
	if gen == nil {
		gen = reqid.NewGenerator()
	}

	status := handler.New(cfg.Store, cfg.Logger)

	// Order: Recover -> RequestID -> Audit -> RateLimit -> Guard -> Upstream
	proxied := []Middleware{
		Recover(cfg.Logger),
		RequestID(gen),
		Audit(cfg.Logger, cfg.Metrics, cfg.TrustedProxies),
	}
	if cfg.Limiter != nil {
		proxied = append(proxied, RateLimit(cfg.Limiter, cfg.TrustedProxies, cfg.Metrics))
	}
	proxied = append(proxied, cfg.Guard.Middleware())

	mux := http.NewServeMux()

	// Status endpoints: no token, no rate limit, no audit line per probe
	internal := Chain(status, Recover(cfg.Logger), RequestID(gen))
	mux.Handle("/-/health", internal)
	mux.Handle("/-/ready", internal)
	if cfg.MetricsEnabled {
		mux.Handle("GET /-/metrics", Chain(cfg.Metrics.Handler(), Recover(cfg.Logger)))
	}

	mux.Handle("/", Chain(cfg.Upstream, proxied...))
	return mux
}
