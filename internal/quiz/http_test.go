package quiz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	"github.com/gokatarajesh/patente-quiz/internal/auth/jwt"
	httperrors "github.com/gokatarajesh/patente-quiz/pkg/http/errors"
)

func authed(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(auth.WithClaims(r.Context(), &jwt.Claims{UserID: userID}))
}

func TestHTTPQuizFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.source.On("ByCategory", mock.Anything, "segnali").Return(explained(questions(2)), nil)
	h := NewHTTPHandler(f.svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/start", strings.NewReader(`{"category_id":"segnali"}`))
	h.HandleStart(rec, authed(req, f.user))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, StateInProgress, snap.State)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/quiz/check", strings.NewReader(`{"option_index":0}`))
	h.HandleCheck(rec, authed(req, f.user))
	require.Equal(t, http.StatusOK, rec.Code)

	var res CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Correct)
	assert.Equal(t, 10, res.XP)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/quiz/check", strings.NewReader(`{"option_index":0}`))
	h.HandleCheck(rec, authed(req, f.user))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/v1/quiz", nil)
	h.HandleLeave(rec, authed(req, f.user))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/quiz", nil)
	h.HandleCurrent(rec, authed(req, f.user))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPCheckRequiresOption(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHTTPHandler(f.svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/check", strings.NewReader(`{}`))
	h.HandleCheck(rec, authed(req, f.user))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httperrors.ErrCodeMissingField, body.Error)
	assert.Equal(t, "option_index", body.Field)
}

func TestHTTPStartAnonymous(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHTTPHandler(f.svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/start", strings.NewReader(`{"category_id":"segnali"}`))
	h.HandleStart(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
