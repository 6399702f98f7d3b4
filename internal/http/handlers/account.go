package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/homeride-be/internal/http/respond"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/service"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// AccountHandler serves the caller's own account. All routes require authentication.
type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Register(r chi.Router) {
	r.Get("/accounts/me", h.handleGet)
	r.Patch("/accounts/me", h.handleUpdate)
	r.Post("/accounts/me/password", h.handleChangePassword)
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, "ok", account.View())
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.accounts.UpdateProfile(r.Context(), subject, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, "profile updated", account.View())
}

func (h *AccountHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), subject, req); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, "password changed", nil)
}

// fail treats a token whose account no longer exists like any other bad token.
func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondServiceError(w, r, err, "phone number already in use")
}
