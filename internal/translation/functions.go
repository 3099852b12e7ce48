package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/llm"
	"github.com/gokatarajesh/patente-quiz/internal/question"
)

type catalog interface {
	Get(ctx context.Context, id string) (question.Question, error)
	SetExplanation(ctx context.Context, id, text string) error
}

type translationStore interface {
	Get(ctx context.Context, questionID, lang string) (queries.Translation, error)
	Upsert(ctx context.Context, t queries.Translation) error
	UpsertExplanation(ctx context.Context, questionID, lang, text string) error
}

var translationSchema = &llm.Schema{
	Name:        "question-translation",
	Description: "A driving test question translated from Italian.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{"type": "string"},
			"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"explanation":   map[string]any{"type": "string"},
		},
		"required":             []string{"question_text", "options", "explanation"},
		"additionalProperties": false,
	},
}

var languageNames = map[string]string{
	"it": "Italian",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"ro": "Romanian",
	"ar": "Arabic",
	"hi": "Hindi",
	"ur": "Urdu",
	"pa": "Punjabi",
	"bn": "Bengali",
	"zh": "Chinese",
	"uk": "Ukrainian",
	"sq": "Albanian",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// Functions is the in-process generation backend: it checks the stored
// translation, prompts the model on a miss and persists the result.
type Functions struct {
	questions    catalog
	translations translationStore
	provider     llm.Provider
	logger       zerolog.Logger
}

var _ Generator = (*Functions)(nil)

func NewFunctions(questions catalog, translations translationStore, provider llm.Provider, logger zerolog.Logger) *Functions {
	return &Functions{
		questions:    questions,
		translations: translations,
		provider:     provider,
		logger:       logger.With().Str("component", "translation_functions").Logger(),
	}
}

// TranslateContent returns the stored translation for (questionID, lang)
// or generates and stores one.
func (f *Functions) TranslateContent(ctx context.Context, questionID, lang string) (Payload, error) {
	lang = normalizeLang(lang, "en")

	existing, err := f.translations.Get(ctx, questionID, lang)
	switch {
	case err == nil && existing.QuestionText != "" && existing.Explanation != "":
		return PayloadFrom(Result{QuestionText: existing.QuestionText, Options: existing.Options, Explanation: existing.Explanation}), nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return Payload{}, fmt.Errorf("read translation: %w", err)
	}

	q, err := f.question(ctx, questionID)
	if err != nil {
		return Payload{}, err
	}

	resp, err := f.provider.Generate(llm.WithPurpose(ctx, "translate_content"), llm.Request{
		Messages: llm.UserPrompt(translationPrompt(q, lang)),
		Schema:   translationSchema,
	})
	if err != nil {
		return Payload{}, fmt.Errorf("generate translation: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(llm.ExtractJSON(resp.Content), &payload); err != nil {
		return Payload{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	r := payload.Result()
	if err := f.translations.Upsert(ctx, queries.Translation{
		QuestionID:   questionID,
		LanguageCode: lang,
		QuestionText: r.QuestionText,
		Options:      r.Options,
		Explanation:  r.Explanation,
	}); err != nil {
		f.logger.Error().Err(err).Str("question_id", questionID).Str("lang", lang).Msg("store translation failed")
	}
	return payload, nil
}

// GenerateExplanation returns the explanation of the correct answer in
// lang, generating and storing it when none exists. Source-language
// explanations are written onto the question itself.
func (f *Functions) GenerateExplanation(ctx context.Context, questionID, lang string) (string, error) {
	lang = normalizeLang(lang, question.SourceLanguage)

	q, err := f.question(ctx, questionID)
	if err != nil {
		return "", err
	}
	if lang == question.SourceLanguage && q.Explanation != "" {
		return q.Explanation, nil
	}
	if lang != question.SourceLanguage {
		existing, err := f.translations.Get(ctx, questionID, lang)
		if err == nil && existing.Explanation != "" {
			return existing.Explanation, nil
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("read translation: %w", err)
		}
	}

	resp, err := f.provider.Generate(llm.WithPurpose(ctx, "generate_explanation"), llm.Request{
		Messages: llm.UserPrompt(explanationPrompt(q, lang)),
	})
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", &llm.ErrInvalidResponse{Err: errors.New("empty explanation")}
	}

	if lang == question.SourceLanguage {
		err = f.questions.SetExplanation(ctx, questionID, text)
	} else {
		err = f.translations.UpsertExplanation(ctx, questionID, lang, text)
	}
	if err != nil {
		f.logger.Error().Err(err).Str("question_id", questionID).Str("lang", lang).Msg("store explanation failed")
	}
	return text, nil
}

func (f *Functions) question(ctx context.Context, id string) (question.Question, error) {
	q, err := f.questions.Get(ctx, id)
	if errors.Is(err, question.ErrNotFound) {
		return question.Question{}, ErrQuestionMissing
	}
	if err != nil {
		return question.Question{}, fmt.Errorf("load question: %w", err)
	}
	return q, nil
}

func translationPrompt(q question.Question, lang string) string {
	options, _ := json.Marshal(q.Options)
	explanation := q.Explanation
	if explanation == "" {
		explanation = "Not provided. Please generate a brief explanation for the correct answer."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional translator. Translate the following driving test question from Italian to %s.\n\n", languageName(lang))
	fmt.Fprintf(&b, "Question: %q\n", q.Prompt)
	fmt.Fprintf(&b, "Options: %s\n", options)
	fmt.Fprintf(&b, "Explanation: %q\n", explanation)
	fmt.Fprintf(&b, "Correct Answer Index: %d\n\n", q.CorrectIndex)
	b.WriteString("Return ONLY a JSON object with the following structure:\n")
	b.WriteString(`{"question_text": "Translated question text", "options": ["Translated Option 1", "Translated Option 2"], "explanation": "Translated explanation (or generated if original was missing)"}`)
	return b.String()
}

func explanationPrompt(q question.Question, lang string) string {
	options, _ := json.Marshal(q.Options)

	var b strings.Builder
	b.WriteString("You are an expert driving instructor. The student answered the following question about Italian road rules.\n\n")
	fmt.Fprintf(&b, "Question: %q\n", q.Prompt)
	fmt.Fprintf(&b, "Options: %s\n", options)
	fmt.Fprintf(&b, "Correct Answer Index: %d (0-based)\n", q.CorrectIndex)
	if answer := q.CorrectAnswer(); answer != "" {
		fmt.Fprintf(&b, "Correct Answer: %q\n", answer)
	}
	b.WriteString("\nPlease provide a clear, helpful, and meaningful explanation of WHY this is the correct answer.\n")
	b.WriteString("Explain the specific road rule or sign meaning involved.\n\n")
	fmt.Fprintf(&b, "Target Language: %s\n", languageName(lang))
	b.WriteString("Length: 2-3 sentences.")
	return b.String()
}
