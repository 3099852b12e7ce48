package question

import (
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler serves the read-only catalog.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger.With().Str("component", "question_http").Logger()}
}

// HandleCategories serves GET /v1/categories
func (h *HTTPHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list categories failed")
		httperrors.RespondInternalError(w, "could not load categories")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

// HandleCategoryQuestions serves GET /v1/categories/{id}/questions
func (h *HTTPHandler) HandleCategoryQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	qs, err := h.svc.ByCategory(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("category_id", id).Msg("list questions failed")
		httperrors.RespondInternalError(w, "could not load questions")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"category_id": id,
		"questions":   qs,
	})
}
