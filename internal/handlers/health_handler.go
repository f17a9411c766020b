package handlers

import (
	"context"
	"net/http"
	"time"

	"studyguard/internal/logger"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the database is reachable
type HealthHandler struct {
	db   pinger
	logg *logger.Logger
}

func NewHealthHandler(db pinger, logg *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logg: logg}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logg.Error(r.Context(), "health.db_unreachable", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
