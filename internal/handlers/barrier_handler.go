package handlers

import (
	"net/http"

	"studyguard/internal/logger"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// BarrierHandler reads and switches the household barrier
type BarrierHandler struct {
	barrier *service.BarrierService
	logg    *logger.Logger
}

// NewBarrierHandler creates a new barrier handler
func NewBarrierHandler(barrier *service.BarrierService, logg *logger.Logger) *BarrierHandler {
	return &BarrierHandler{barrier: barrier, logg: logg}
}

type toggleBarrierRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Status returns the family's barrier, creating the inactive default on first read.
// Child devices poll this.
func (h *BarrierHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	status, err := h.barrier.GetOrCreateStatus(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// Toggle switches the barrier on or off on behalf of the calling parent
func (h *BarrierHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req toggleBarrierRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	userID := claims.UserID
	status, err := h.barrier.Toggle(r.Context(), claims.FamilyID, *req.IsActive, &userID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
