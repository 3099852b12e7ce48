package quiz

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler exposes quiz sessions. Routes sit behind auth.RequireAuth.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger.With().Str("component", "quiz_http").Logger()}
}

// HandleStart serves POST /v1/quiz/start
func (h *HTTPHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	snap, err := h.svc.Start(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

// HandleCurrent serves GET /v1/quiz
func (h *HTTPHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Current(auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

// HandleCheck serves POST /v1/quiz/check
func (h *HTTPHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OptionIndex *int `json:"option_index"`
	}
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	if req.OptionIndex == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "option_index is required", "option_index")
		return
	}
	res, err := h.svc.Check(r.Context(), auth.UserIDFromContext(r.Context()), *req.OptionIndex)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

// HandleContinue serves POST /v1/quiz/next
func (h *HTTPHandler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Continue(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

// HandleGoTo serves POST /v1/quiz/goto
func (h *HTTPHandler) HandleGoTo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	snap, err := h.svc.GoTo(auth.UserIDFromContext(r.Context()), req.Index)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, snap)
}

// HandleLeave serves DELETE /v1/quiz
func (h *HTTPHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.svc.Leave(auth.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrNoQuestion):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNoSession, err.Error())
	case errors.Is(err, ErrAlreadyChecked):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyChecked, err.Error())
	case errors.Is(err, ErrInvalidOption), errors.Is(err, ErrInvalidMode):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, ErrSignInRequired):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, err.Error())
	default:
		h.logger.Error().Err(err).Msg("quiz request failed")
		httperrors.RespondInternalError(w, "quiz unavailable")
	}
}
