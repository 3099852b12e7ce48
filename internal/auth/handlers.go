package auth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc: authSvc,
		logger:  logger.With().Str("component", "auth_http").Logger(),
	}
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /v1/auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmailTaken):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyExists, err.Error())
		return
	case errors.Is(err, ErrEmailRequired):
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, err.Error(), "email")
		return
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "password")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("register failed")
		httperrors.RespondInternalError(w, "registration failed")
		return
	}

	httperrors.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

// Login handles POST /v1/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error().Err(err).Msg("login failed")
		}
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidCredentials, "invalid email or password")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

// RefreshToken handles POST /v1/auth/refresh
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.authSvc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		code := httperrors.ErrCodeRefreshFailed
		if errors.Is(err, ErrTokenRevoked) {
			code = httperrors.ErrCodeTokenRevoked
		}
		httperrors.RespondUnauthorized(w, code, "refresh token rejected")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, tokens)
}

// SignOut handles POST /v1/auth/signout
func (h *HTTPHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.authSvc.SignOut(r.Context(), req.RefreshToken); err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "refresh token rejected")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *HTTPHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	user, err := h.authSvc.Me(r.Context(), userID)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "user not found")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, user)
}
