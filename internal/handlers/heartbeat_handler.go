package handlers

import (
	"net/http"
	"strconv"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/service"
)

// HeartbeatHandler accepts child liveness reports and serves them to parents
type HeartbeatHandler struct {
	heartbeats *service.HeartbeatService
	household  *service.HouseholdService
	logg       *logger.Logger
}

// NewHeartbeatHandler creates a new heartbeat handler
func NewHeartbeatHandler(heartbeats *service.HeartbeatService, household *service.HouseholdService, logg *logger.Logger) *HeartbeatHandler {
	return &HeartbeatHandler{heartbeats: heartbeats, household: household, logg: logg}
}

// Record stores a heartbeat for the calling child
func (h *HeartbeatHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	hb, err := h.heartbeats.Record(r.Context(), claims.UserID, claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, hb)
}

// Latest returns one liveness entry per child in the caller's family
func (h *HeartbeatHandler) Latest(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	statuses, err := h.heartbeats.LatestPerChild(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

// History returns a child's recent heartbeats, newest first
func (h *HeartbeatHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, err := pathID(r, "id")
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(r.Context(), h.logg, w, apperr.Validation("invalid limit"))
			return
		}
	}

	if _, err := h.household.GetChild(r.Context(), claims.FamilyID, childID); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	rows, err := h.heartbeats.History(r.Context(), childID, limit)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
