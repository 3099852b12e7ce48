package rewards

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler exposes the signed-in user's rewards profile.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger.With().Str("component", "rewards_http").Logger()}
}

// HandleGetProfile serves GET /v1/users/me
func (h *HTTPHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.svc.Ledger(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Msg("load ledger failed")
		httperrors.RespondInternalError(w, "could not load profile")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, ledger.Profile())
}

// HandleUpdateProfile serves PATCH /v1/users/me
func (h *HTTPHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd ProfileUpdate
	if !httperrors.DecodeJSON(w, r, &upd) {
		return
	}
	profile, err := h.svc.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), upd)
	if err != nil {
		if errors.Is(err, ErrInvalidProfile) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("profile update failed")
		httperrors.RespondInternalError(w, "could not save profile")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, profile)
}

type mistakeEntry struct {
	QuestionID  string `json:"question_id"`
	ReviewCount int    `json:"review_count"`
}

// HandleMistakes serves GET /v1/users/me/mistakes
func (h *HTTPHandler) HandleMistakes(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.svc.Ledger(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		httperrors.RespondInternalError(w, "could not load mistakes")
		return
	}
	ids := ledger.Mistakes()
	entries := make([]mistakeEntry, 0, len(ids))
	for _, id := range ids {
		// mastered between the two reads
		n, ok := ledger.ReviewCount(id)
		if !ok {
			continue
		}
		entries = append(entries, mistakeEntry{QuestionID: id, ReviewCount: n})
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"question_ids": ids,
		"mistakes":     entries,
	})
}
