package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUnavailable means no translation could be produced; callers treat
	// it as "show the source text".
	ErrUnavailable     = errors.New("translation unavailable")
	ErrQuestionMissing = errors.New("question not found")
	ErrTextRequired    = errors.New("text is required")
)

// Result is a translated question, always plain text.
type Result struct {
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Explanation  string   `json:"explanation"`
}

// Complete reports whether r may be served from cache without regenerating.
func (r Result) Complete() bool {
	return strings.TrimSpace(r.Explanation) != ""
}

// Payload is a generation response before coercion. Models and remote
// handlers sometimes answer with numbers, objects or null where text is
// expected, so every field stays raw until Result is called.
type Payload struct {
	QuestionText json.RawMessage `json:"question_text"`
	Options      json.RawMessage `json:"options"`
	Explanation  json.RawMessage `json:"explanation"`
}

// Result coerces every field to text.
func (p Payload) Result() Result {
	return Result{
		QuestionText: Stringify(p.QuestionText),
		Options:      stringifyList(p.Options),
		Explanation:  Stringify(p.Explanation),
	}
}

// Stringify renders a JSON value as text: strings are unquoted, null and
// empty input become "", anything else keeps its compact JSON encoding.
func Stringify(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func stringifyList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{Stringify(raw)}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, Stringify(item))
	}
	return out
}

// PayloadFrom wraps already-textual fields.
func PayloadFrom(r Result) Payload {
	text, _ := json.Marshal(r.QuestionText)
	opts, _ := json.Marshal(r.Options)
	expl, _ := json.Marshal(r.Explanation)
	return Payload{QuestionText: text, Options: opts, Explanation: expl}
}

// Generator produces translations and explanations and persists them.
type Generator interface {
	TranslateContent(ctx context.Context, questionID, lang string) (Payload, error)
	GenerateExplanation(ctx context.Context, questionID, lang string) (string, error)
}
