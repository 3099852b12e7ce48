package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWordURL = "https://translate.googleapis.com"

// WordTranslator uses the public gtx endpoint for tap-to-translate.
type WordTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewWordTranslator(baseURL string, timeout time.Duration) *WordTranslator {
	if baseURL == "" {
		baseURL = defaultWordURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WordTranslator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Translate returns the first segment of the gtx answer.
func (t *WordTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrTextRequired
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", lang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("word translation returned status %d", resp.StatusCode)
	}

	// [[["translated","original",...], ...], ...]
	var data []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode word translation: %w", err)
	}
	out, ok := firstSegment(data)
	if !ok {
		return "", ErrUnavailable
	}
	return out, nil
}

func firstSegment(data []json.RawMessage) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var sentences [][]json.RawMessage
	if err := json.Unmarshal(data[0], &sentences); err != nil || len(sentences) == 0 || len(sentences[0]) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(sentences[0][0], &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
