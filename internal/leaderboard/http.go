package leaderboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the current leaderboard for a window.
// Route: GET /v1/leaderboards/{window}?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	window := r.PathValue("window")
	limit := parseLimit(r.URL.Query().Get("limit"), 10)

	top, err := h.svc.Top(r.Context(), window, limit)
	if errors.Is(err, ErrUnknownWindow) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownWindow, "unknown leaderboard window")
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("window", window).Msg("leaderboard fetch failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeLeaderboardFetchFailed, "leaderboard unavailable")
		return
	}

	resp := map[string]interface{}{
		"window":      window,
		"top":         top,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if userID := auth.UserIDFromContext(r.Context()); userID != uuid.Nil {
		rank, xp, err := h.svc.Rank(r.Context(), window, userID)
		if err != nil {
			h.logger.Debug().Err(err).Msg("leaderboard rank lookup failed")
		} else {
			resp["me"] = map[string]int{"rank": rank, "xp": xp}
		}
	}
	httperrors.RespondJSON(w, http.StatusOK, resp)
}
