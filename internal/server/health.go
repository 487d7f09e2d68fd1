package server

import (
	"net/http"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/sessions"
)

// HealthHandler reports liveness and the number of live sessions.
type HealthHandler struct {
	registry *sessions.Registry
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Sessions: h.registry.Len()})
}
