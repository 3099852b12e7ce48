package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteGenerator(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var req functionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch r.URL.Path {
		case "/translate-content":
			_, _ = w.Write([]byte(`{"question_text":"Bend","options":["True","False"],"explanation":{"text":"odd shape"}}`))
		case "/generate-explanation":
			if req.QuestionID == "missing" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Question not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"explanation":"Because."}`))
		}
	}))
	defer srv.Close()

	gen := NewRemoteGenerator(RemoteConfig{BaseURL: srv.URL + "/", APIKey: "secret"}, zerolog.Nop())

	payload, err := gen.TranslateContent(context.Background(), "q1", "en")
	require.NoError(t, err)
	r := payload.Result()
	assert.Equal(t, "Bend", r.QuestionText)
	assert.Equal(t, `{"text":"odd shape"}`, r.Explanation)
	assert.Equal(t, "Bearer secret", auth)

	text, err := gen.GenerateExplanation(context.Background(), "q1", "it")
	require.NoError(t, err)
	assert.Equal(t, "Because.", text)

	_, err = gen.GenerateExplanation(context.Background(), "missing", "it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Question not found")
}

func TestRemoteGeneratorUnconfigured(t *testing.T) {
	_, err := NewRemoteGenerator(RemoteConfig{}, zerolog.Nop()).TranslateContent(context.Background(), "q1", "en")
	assert.Error(t, err)
}
