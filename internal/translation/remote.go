package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RemoteConfig holds connection details for a deployed functions endpoint.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// RemoteGenerator calls translate-content and generate-explanation over
// HTTP; the remote side owns caching and persistence.
type RemoteGenerator struct {
	httpClient     *http.Client
	config         RemoteConfig
	logger         zerolog.Logger
	translateURL   string
	explanationURL string
}

var _ Generator = (*RemoteGenerator)(nil)

func NewRemoteGenerator(cfg RemoteConfig, logger zerolog.Logger) *RemoteGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &RemoteGenerator{
		httpClient:     &http.Client{Timeout: timeout},
		config:         cfg,
		logger:         logger.With().Str("component", "remote_generator").Logger(),
		translateURL:   base + "/translate-content",
		explanationURL: base + "/generate-explanation",
	}
}

func (g *RemoteGenerator) TranslateContent(ctx context.Context, questionID, lang string) (Payload, error) {
	var payload Payload
	if err := g.post(ctx, g.translateURL, functionRequest{QuestionID: questionID, TargetLang: lang}, &payload); err != nil {
		return Payload{}, err
	}
	return payload, nil
}

func (g *RemoteGenerator) GenerateExplanation(ctx context.Context, questionID, lang string) (string, error) {
	var resp struct {
		Explanation json.RawMessage `json:"explanation"`
	}
	if err := g.post(ctx, g.explanationURL, functionRequest{QuestionID: questionID, TargetLang: lang}, &resp); err != nil {
		return "", err
	}
	text := strings.TrimSpace(Stringify(resp.Explanation))
	if text == "" {
		return "", fmt.Errorf("functions endpoint returned no explanation")
	}
	return text, nil
}

func (g *RemoteGenerator) post(ctx context.Context, url string, payload functionRequest, dst interface{}) error {
	if g.config.BaseURL == "" {
		return fmt.Errorf("functions endpoint not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var fnErr functionError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(raw, &fnErr) == nil && fnErr.Error != "" {
			return fmt.Errorf("functions endpoint returned %d: %s", resp.StatusCode, fnErr.Error)
		}
		return fmt.Errorf("functions endpoint returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode functions payload: %w", err)
	}
	return nil
}

type functionRequest struct {
	QuestionID string `json:"question_id"`
	TargetLang string `json:"target_lang"`
}

type functionError struct {
	Error string `json:"error"`
}
