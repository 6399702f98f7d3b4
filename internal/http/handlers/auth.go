package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/http/respond"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/service"
)

// AuthHandler owns the register, login and logout endpoints.
type AuthHandler struct {
	accounts     *service.AccountService
	secureCookie bool
}

// NewAuthHandler constructs the handler. secureCookie should only be false for
// local development over plain HTTP.
func NewAuthHandler(accounts *service.AccountService, secureCookie bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, secureCookie: secureCookie}
}

// Register attaches auth routes. limit wraps the credential endpoints.
func (h *AuthHandler) Register(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/auth/register", h.handleRegister)
	r.With(limit).Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	normalizePhone(&req)
	if !validRequest(w, r, &req) {
		return
	}

	session, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "account already exists")
		return
	}
	h.writeSession(w, r, http.StatusCreated, "account created", session)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	h.writeSession(w, r, http.StatusOK, "login successful", session)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookie))
	respond.JSON(w, r, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, status int, message string, s service.Session) {
	http.SetCookie(w, auth.SessionCookie(s.Token, s.ExpiresAt, h.secureCookie))
	respond.JSON(w, r, status, message, dto.SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Account:   s.Account.View(),
	})
}

// normalizePhone accepts the legacy phoneNumber field when phone is absent.
func normalizePhone(req *dto.RegisterRequest) {
	if strings.TrimSpace(req.Phone) == "" {
		req.Phone = req.PhoneNumber
	}
	req.Phone = strings.TrimSpace(req.Phone)
}
