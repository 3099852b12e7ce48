package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/patente-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/patente-quiz/internal/quiz"
	"github.com/gokatarajesh/patente-quiz/internal/rewards"
	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

func TestRouterHealthAndReadiness(t *testing.T) {
	healthy := NewRouter(zerolog.Nop(), Handlers{
		Pingers: map[string]Pinger{"redis": func(context.Context) error { return nil }},
	})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(zerolog.Nop(), Handlers{
		Pingers: map[string]Pinger{"postgres": func(context.Context) error { return errors.New("refused") }},
	})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(zerolog.Nop(), Handlers{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuizRoutesRequireAuth(t *testing.T) {
	svc := quiz.NewService(quiz.Deps{}, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), Handlers{Quiz: quiz.NewHTTPHandler(svc, zerolog.Nop())})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/quiz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type staticTokens map[string]uuid.UUID

func (s staticTokens) ValidateToken(token string) (*jwt.Claims, error) {
	id, ok := s[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return &jwt.Claims{UserID: id}, nil
}

func TestWebSocketSendsProfileAndAnswersPing(t *testing.T) {
	userID := uuid.New()
	hub := ws.NewHub(zerolog.Nop())
	profiles := func(_ context.Context, id uuid.UUID) (rewards.Profile, error) {
		return rewards.Profile{UserID: id, Hearts: 4, XP: 120}, nil
	}
	h := NewWSHandler(hub, staticTokens{"good": userID}, profiles, zerolog.Nop())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=bad", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeProfileUpdated, msg.Type)
	assert.Contains(t, string(msg.Payload), `"hearts":4`)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "r1"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypePong, msg.Type)
	assert.Equal(t, "r1", msg.RequestID)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "dance"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeError, msg.Type)

	assert.Eventually(t, func() bool { return hub.Connected(userID) == 1 }, time.Second, 10*time.Millisecond)
}
