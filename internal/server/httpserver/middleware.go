package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/server/httpserver/handler"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
	"github.com/yndnr/ptagate/internal/telemetry/metric"
	"github.com/yndnr/ptagate/pkg/reqid"
)

// Context keys for request-scoped values.
type contextKey string

// ContextKeyState is the context key for the per-request audit state.
const ContextKeyState contextKey = "ptagate.request_state"

// requestState is filled in by inner middleware and read by Audit after the
// request completes.
type requestState struct {
	start    time.Time
	guarded  bool
	outcome  string
	decision pta.Decision
}

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID assigns each request an ID, reusing a well-formed X-Request-ID
// set by a fronting proxy.
func RequestID(gen *reqid.Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if !reqid.Valid(requestID) {
				requestID = gen.New()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyState, &requestState{start: time.Now()})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					handler.WriteError(w, r, domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs every request once it completes and records request metrics.
// Token values never reach the log: the query is redacted and the guard
// decision is reported by candidate index and key slot only.
func Audit(log *slog.Logger, metrics *metric.Registry, proxies *TrustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			state := stateFrom(r.Context())
			start := time.Now()
			if state != nil {
				start = state.start
			}
			duration := time.Since(start)

			metrics.RecordRequest(r.Method, strconv.Itoa(wrapped.statusCode))
			metrics.ObserveRequestDuration(r.Method, duration.Seconds())

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", logger.RedactQuery(r.URL.RawQuery),
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", proxies.ClientIP(r),
			}
			if state != nil && state.guarded {
				attrs = append(attrs,
					"outcome", state.outcome,
					"source", state.decision.Method.String(),
					"candidate", state.decision.Candidate,
					"slot", state.decision.KeySlot.String(),
				)
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// RateLimit rejects clients exceeding their token bucket with 429. Clients
// are told apart by peer address unless the peer is a trusted proxy.
func RateLimit(limiter *ClientLimiter, proxies *TrustedProxies, metrics *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(proxies.ClientIP(r)) {
				metrics.IncRateLimited()
				handler.WriteError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the reverse proxy needs for flushing streamed responses.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func stateFrom(ctx context.Context) *requestState {
	s, _ := ctx.Value(ContextKeyState).(*requestState)
	return s
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

