package registry

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler exposes bookmark and flag toggles.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger.With().Str("component", "registry_http").Logger()}
}

// HandleToggle serves POST /v1/{kind}/{questionID}/toggle
func (h *HTTPHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseKind(r.PathValue("kind"))
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "unknown collection")
		return
	}
	qid := r.PathValue("questionID")
	if qid == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, "question id required")
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "sign in to save questions")
		return
	}
	reg, err := h.svc.Registry(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID.String()).Msg("load registry failed")
		httperrors.RespondInternalError(w, "could not load saved questions")
		return
	}
	present := reg.Toggle(kind, qid)
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"question_id": qid,
		"kind":        kind,
		"present":     present,
	})
}

// HandleList serves GET /v1/{kind}
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseKind(r.PathValue("kind"))
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "unknown collection")
		return
	}
	reg, err := h.svc.Registry(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		httperrors.RespondInternalError(w, "could not load saved questions")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"kind":         kind,
		"question_ids": reg.List(kind),
	})
}
