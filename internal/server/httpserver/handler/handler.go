// Package handler provides the gate's own HTTP endpoints and the error
// envelope shared by the middleware and the upstream proxy.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
)

// Handler serves the status endpoints under /-/.
type Handler struct {
	store  *pta.Store
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Handler reporting on store.
func New(store *pta.Store, logger *slog.Logger) *Handler {
	h := &Handler{
		store:  store,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /-/health", h.handleHealth)
	h.mux.HandleFunc("GET /-/ready", h.handleReady)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes the error envelope for err. Only the code and the
// coarse message of a DomainError reach the client; anything else is
// reported as an internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternalServer
	}
	pub := de.Public()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Error-Code", pub.Code)
	if requestID := logger.RequestIDFromContext(r.Context()); requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	if pub.Code == domain.ErrRateLimited.Code {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(domain.HTTPStatus(pub.Code))
	_ = json.NewEncoder(w).Encode(ErrorBody{Code: pub.Code, Message: pub.Message})
}
