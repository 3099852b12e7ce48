package translation

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler exposes the client lookups and the generation functions.
type HTTPHandler struct {
	client    *Client
	functions Generator
	logger    zerolog.Logger
}

func NewHTTPHandler(client *Client, functions Generator, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		client:    client,
		functions: functions,
		logger:    logger.With().Str("component", "translation_http").Logger(),
	}
}

type contentRequest struct {
	QuestionID string `json:"question_id"`
	TargetLang string `json:"target_lang"`
}

type wordRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

// HandleTranslation serves GET /v1/questions/{id}/translation?lang=xx
func (h *HTTPHandler) HandleTranslation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := h.client.Translate(r.Context(), id, r.URL.Query().Get("lang"))
	if !ok {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeTranslationUnavailable, "translation unavailable")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, result)
}

// HandleTranslateContent serves POST /v1/functions/translate-content
func (h *HTTPHandler) HandleTranslateContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}
	payload, err := h.functions.TranslateContent(r.Context(), req.QuestionID, normalizeLang(req.TargetLang, "en"))
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, payload.Result())
}

// HandleGenerateExplanation serves POST /v1/functions/generate-explanation
func (h *HTTPHandler) HandleGenerateExplanation(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}
	text, err := h.functions.GenerateExplanation(r.Context(), req.QuestionID, normalizeLang(req.TargetLang, "it"))
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]string{"explanation": text})
}

// HandleTranslateWord serves POST /v1/functions/translate-word
func (h *HTTPHandler) HandleTranslateWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if !httperrors.DecodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "Text is required", "text")
		return
	}
	out, ok := h.client.TranslateWord(r.Context(), req.Text, req.TargetLang)
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeTranslationUnavailable, "Translation failed")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]string{"translatedText": out})
}

func (h *HTTPHandler) respondGenerationError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrQuestionMissing) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Question not found")
		return
	}
	h.logger.Warn().Err(err).Msg("generation failed")
	httperrors.RespondBadRequest(w, httperrors.ErrCodeGenerationFailed, err.Error())
}
