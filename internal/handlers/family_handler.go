package handlers

import (
	"net/http"

	"studyguard/internal/logger"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// FamilyHandler serves the caller's household
type FamilyHandler struct {
	household *service.HouseholdService
	logg      *logger.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(household *service.HouseholdService, logg *logger.Logger) *FamilyHandler {
	return &FamilyHandler{household: household, logg: logg}
}

type renameFamilyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Show returns the family with its members
func (h *FamilyHandler) Show(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	family, err := h.household.GetFamilyWithMembers(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// Rename changes the family's display name
func (h *FamilyHandler) Rename(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req renameFamilyRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	family, err := h.household.RenameFamily(r.Context(), claims.FamilyID, req.Name)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// Children lists the family's child accounts
func (h *FamilyHandler) Children(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	children, err := h.household.ListChildren(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}
