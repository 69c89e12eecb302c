package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
)

// handleHealth handles GET /-/health. The process is healthy while it can
// answer.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: buildinfo.Version,
	})
}

// handleReady handles GET /-/ready. The gate is ready once a validator is
// installed.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	v := h.store.Load()
	if v == nil {
		WriteError(w, r, domain.ErrServiceUnavailable.WithDetails("no validator installed"))
		return
	}

	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:   "ready",
		Time:     time.Now().UTC().Format(time.RFC3339),
		KeyPairs: v.Keyring().Len(),
	})
}
