package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	"github.com/gokatarajesh/patente-quiz/internal/config"
	"github.com/gokatarajesh/patente-quiz/internal/leaderboard"
	"github.com/gokatarajesh/patente-quiz/internal/logging"
	"github.com/gokatarajesh/patente-quiz/internal/question"
	"github.com/gokatarajesh/patente-quiz/internal/quiz"
	"github.com/gokatarajesh/patente-quiz/internal/registry"
	"github.com/gokatarajesh/patente-quiz/internal/rewards"
	"github.com/gokatarajesh/patente-quiz/internal/translation"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

// WSUpgrader handles WebSocket upgrades.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// Handlers groups the HTTP surfaces mounted by the API server.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	AuthService *auth.Service
	Rewards     *rewards.HTTPHandler
	Registry    *registry.HTTPHandler
	Questions   *question.HTTPHandler
	Translation *translation.HTTPHandler
	Quiz        *quiz.HTTPHandler
	Leaderboard *leaderboard.HTTPHandler
	WebSocket   http.HandlerFunc
	Pingers     map[string]Pinger
}

// NewHTTPServer wires every route of the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(logger, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the route table. Nil handler groups are skipped.
func NewRouter(logger zerolog.Logger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", readiness(h.Pingers))
	mux.Handle("GET /metrics", promhttp.Handler())

	authed := func(fn http.HandlerFunc) http.Handler { return auth.RequireAuth(fn) }

	if h.Auth != nil {
		mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
		mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)
		mux.HandleFunc("POST /v1/auth/refresh", h.Auth.RefreshToken)
		mux.HandleFunc("POST /v1/auth/signout", h.Auth.SignOut)
		mux.Handle("GET /v1/auth/me", authed(h.Auth.Me))
	}

	if h.Rewards != nil {
		mux.Handle("GET /v1/users/me", authed(h.Rewards.HandleGetProfile))
		mux.Handle("PATCH /v1/users/me", authed(h.Rewards.HandleUpdateProfile))
		mux.Handle("GET /v1/users/me/mistakes", authed(h.Rewards.HandleMistakes))
	}

	if h.Questions != nil {
		mux.HandleFunc("GET /v1/categories", h.Questions.HandleCategories)
		mux.HandleFunc("GET /v1/categories/{id}/questions", h.Questions.HandleCategoryQuestions)
	}

	if h.Registry != nil {
		mux.HandleFunc("GET /v1/{kind}", h.Registry.HandleList)
		mux.HandleFunc("POST /v1/{kind}/{questionID}/toggle", h.Registry.HandleToggle)
	}

	if h.Translation != nil {
		mux.HandleFunc("GET /v1/questions/{id}/translation", h.Translation.HandleTranslation)
		mux.HandleFunc("POST /v1/functions/translate-content", h.Translation.HandleTranslateContent)
		mux.HandleFunc("POST /v1/functions/generate-explanation", h.Translation.HandleGenerateExplanation)
		mux.HandleFunc("POST /v1/functions/translate-word", h.Translation.HandleTranslateWord)
	}

	if h.Quiz != nil {
		mux.Handle("POST /v1/quiz/start", authed(h.Quiz.HandleStart))
		mux.Handle("GET /v1/quiz", authed(h.Quiz.HandleCurrent))
		mux.Handle("POST /v1/quiz/check", authed(h.Quiz.HandleCheck))
		mux.Handle("POST /v1/quiz/next", authed(h.Quiz.HandleContinue))
		mux.Handle("POST /v1/quiz/goto", authed(h.Quiz.HandleGoTo))
		mux.Handle("DELETE /v1/quiz", authed(h.Quiz.HandleLeave))
	}

	if h.Leaderboard != nil {
		mux.HandleFunc("GET /v1/leaderboards/{window}", h.Leaderboard.HandleGet)
	}

	if h.WebSocket != nil {
		mux.HandleFunc("GET /ws", h.WebSocket)
	}

	var handler http.Handler = mux
	if h.AuthService != nil {
		handler = auth.AuthMiddleware(h.AuthService, logger)(handler)
	}
	return withLogger(logger, handler)
}

func readiness(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, ping := range pingers {
			if err := ping(ctx); err != nil {
				logger.Error().Err(err).Str("dependency", name).Msg("dependency ping failed")
				httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, name+" unreachable")
				return
			}
		}
		httperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// withLogger stores a request-scoped logger in the context.
func withLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}
