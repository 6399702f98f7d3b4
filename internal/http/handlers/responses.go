package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/http/respond"
	"github.com/hongminglow/homeride-be/internal/service"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// respondServiceError maps service and storage errors onto the error table.
// Anything unrecognised is logged in full and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, conflictMessage string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, r, http.StatusConflict, conflictMessage)
	case errors.Is(err, auth.ErrPasswordTooLong):
		respond.ValidationError(w, r, []respond.FieldError{{Field: "password", Message: "is too long"}})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respond.Error(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// callerID returns the authenticated subject. Routes using it sit behind the
// authentication middleware, so a missing identity is answered like a bad token.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return id.Subject, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
