package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/recipebox/internal/auth"
	"github.com/desertthunder/recipebox/internal/backend"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
	Title string `json:"title"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	var be *backend.Error
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrAuthRequired),
		errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrConfirmationPending):
		return http.StatusAccepted
	case errors.As(err, &be), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ce *auth.CredentialError
	body := errorBody{}

	switch {
	case errors.As(err, &ce):
		body.Title, body.Error = ce.Title, ce.Message
	case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrInvalidCredentials):
		body.Title, body.Error = repositories.TitleAuth, err.Error()
	case errors.Is(err, shared.ErrInvalidInput):
		body.Title, body.Error = repositories.TitleValidation, err.Error()
	default:
		body.Title, body.Error = repositories.Describe(err)
	}

	writeJSON(w, StatusFor(err), body)
}

// decode reads a JSON request body into v. Unknown fields are ignored.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body must be valid JSON", shared.ErrInvalidInput)
	}
	return nil
}
