package handlers

import (
	"net/http"

	"studyguard/internal/logger"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// SettingsHandler serves per-child screen time settings
type SettingsHandler struct {
	settings  *service.SettingsService
	household *service.HouseholdService
	logg      *logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *service.SettingsService, household *service.HouseholdService, logg *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, household: household, logg: logg}
}

// Mine returns the calling child's settings
func (h *SettingsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	settings, err := h.settings.Get(r.Context(), claims.UserID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Show returns the settings of a child in the caller's family
func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.familyChild(w, r)
	if !ok {
		return
	}
	settings, err := h.settings.Get(r.Context(), childID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Update applies a partial change to a child's settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.familyChild(w, r)
	if !ok {
		return
	}

	var patch service.SettingsPatch
	if err := validation.DecodeJSON(r, &patch); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), childID, patch)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) familyChild(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := ClaimsFromContext(r.Context())
	childID, err := pathID(r, "id")
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return 0, false
	}
	if _, err := h.household.GetChild(r.Context(), claims.FamilyID, childID); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return 0, false
	}
	return childID, true
}
