package translation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordTranslatorParsesFirstSegment(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"client": q.Get("client"), "tl": q.Get("tl"), "q": q.Get("q")}
		_, _ = w.Write([]byte(`[[["crossroads","incrocio",null,null,10]],null,"it"]`))
	}))
	defer srv.Close()

	wt := NewWordTranslator(srv.URL, time.Second)
	out, err := wt.Translate(context.Background(), "incrocio", "en")
	require.NoError(t, err)
	assert.Equal(t, "crossroads", out)
	assert.Equal(t, map[string]string{"client": "gtx", "tl": "en", "q": "incrocio"}, query)
}

func TestWordTranslatorMalformedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[null]`))
	}))
	defer srv.Close()

	_, err := NewWordTranslator(srv.URL, time.Second).Translate(context.Background(), "incrocio", "en")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWordTranslatorRequiresText(t *testing.T) {
	_, err := NewWordTranslator("", 0).Translate(context.Background(), "  ", "en")
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestClientTranslateWord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[["give way","dare precedenza"]]]`))
	}))
	defer srv.Close()

	client := NewClient(&countingGenerator{}, ClientOptions{Words: NewWordTranslator(srv.URL, time.Second)}, zerolog.Nop())
	out, ok := client.TranslateWord(context.Background(), "dare precedenza", "")
	assert.True(t, ok)
	assert.Equal(t, "give way", out)

	_, ok = client.TranslateWord(context.Background(), "", "en")
	assert.False(t, ok)
}
