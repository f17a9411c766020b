package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

// respondWithError maps err to a status and JSON body. Storage failures are
// logged and reported without their cause.
func respondWithError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.KindStorage, err, "unexpected error")
	}
	status := apperr.HTTPStatus(typed.Kind())

	body := apiError{Code: string(typed.Kind()), Message: typed.Message()}
	if status >= http.StatusInternalServerError {
		if logg != nil {
			logg.Error(ctx, "request failed", err)
		}
		body.Message = "internal server error"
	} else {
		body.Details = typed.Details()
	}

	writeJSON(w, status, errorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
