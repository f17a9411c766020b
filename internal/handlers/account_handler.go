package handlers

import (
	"net/http"
	"time"

	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/security"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// AccountHandler handles registration requests
type AccountHandler struct {
	accounts *service.AccountService
	tokens   *security.TokenService
	logg     *logger.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *service.AccountService, tokens *security.TokenService, logg *logger.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, tokens: tokens, logg: logg}
}

type registerResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      models.User   `json:"user"`
	Family    models.Family `json:"family"`
}

// Register creates an account, placing it in a household, and returns a token
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := validation.DecodeJSON(r, &input); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), input)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(result.User)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	ctx := h.logg.WithUserID(r.Context(), result.User.ID)
	ctx = h.logg.WithFamilyID(ctx, result.Family.ID)
	h.logg.Info(ctx, "account.registered")

	respondJSON(w, http.StatusCreated, registerResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      result.User,
		Family:    result.Family,
	})
}
