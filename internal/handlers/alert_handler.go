package handlers

import (
	"net/http"
	"strconv"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// AlertHandler handles barrier alert requests
type AlertHandler struct {
	alerts *service.AlertService
	logg   *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *service.AlertService, logg *logger.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logg: logg}
}

// Raise records an alert from the calling child's device
func (h *AlertHandler) Raise(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var input service.RaiseAlertInput
	if err := validation.DecodeJSON(r, &input); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	input.ChildID = claims.UserID
	input.FamilyID = claims.FamilyID

	alert, err := h.alerts.Raise(r.Context(), input)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

// List returns the family's alerts, newest first. ?unacknowledged=true limits
// the result to open alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	unackOnly := false
	if raw := r.URL.Query().Get("unacknowledged"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(r.Context(), h.logg, w, apperr.Validation("invalid unacknowledged flag"))
			return
		}
		unackOnly = parsed
	}

	alerts, err := h.alerts.List(r.Context(), claims.FamilyID, unackOnly)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Acknowledge marks one of the family's alerts as seen
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	alertID, err := pathID(r, "id")
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	alert, err := h.alerts.Acknowledge(r.Context(), claims.FamilyID, alertID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}
