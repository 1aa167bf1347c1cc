package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/user/leafmarket/internal/adapter/api/middleware"
	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/usecase"
)

// AuthHandler handles signup, login, logout and session resolution.
type AuthHandler struct {
	uc       usecase.AuthUseCase
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *metrics.StoreMetrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(uc usecase.AuthUseCase, logger *slog.Logger, m *metrics.StoreMetrics) *AuthHandler {
	return &AuthHandler{
		uc:       uc,
		logger:   logger,
		validate: validator.New(),
		metrics:  m,
	}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin customer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.countAuth("signup", "invalid")
		respondWithError(w, http.StatusBadRequest, signupValidationMessage(err))
		return
	}

	result, err := h.uc.Signup(r.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		h.countAuth("signup", "error")
		respondWithError(w, authErrorStatus(err), err.Error())
		return
	}

	h.countAuth("signup", "ok")
	respondWithJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.countAuth("login", "invalid")
		respondWithError(w, http.StatusBadRequest, usecase.ErrInvalidCredentials.Error())
		return
	}

	result, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countAuth("login", "error")
		respondWithError(w, authErrorStatus(err), err.Error())
		return
	}

	h.countAuth("login", "ok")
	respondWithJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout. The token being ended travels in
// the Authorization header like any other request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.uc.Logout(r.Context(), token); err != nil {
		h.countAuth("logout", "error")
		respondWithError(w, authErrorStatus(err), err.Error())
		return
	}

	h.countAuth("logout", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /api/auth/session. It reports the resolved
// identity and role for the presented token; clients use it to decide
// which views to offer before any gate is hit.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := h.uc.ResolveSession(r.Context(), token)
	if err != nil {
		respondWithError(w, authErrorStatus(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) countAuth(op, outcome string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(op, outcome).Inc()
	}
}

// authErrorStatus maps the uniform auth error set onto HTTP statuses.
func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrWeakPassword),
		errors.Is(err, usecase.ErrInvalidEmail),
		errors.Is(err, usecase.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// signupValidationMessage converts the first validation failure into the
// same user-facing wording the auth service uses.
func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Email":
			return usecase.ErrInvalidEmail.Error()
		case "Password":
			return usecase.ErrWeakPassword.Error()
		case "Role":
			return usecase.ErrInvalidRole.Error()
		}
	}
	return "invalid request"
}
