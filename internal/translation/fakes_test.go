package translation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/question"
)

type countingGenerator struct {
	translations atomic.Int32
	explanations atomic.Int32
	payload      Payload
	explanation  string
	err          error
	gate         chan struct{}
}

func (g *countingGenerator) TranslateContent(ctx context.Context, _, _ string) (Payload, error) {
	g.translations.Add(1)
	if g.gate != nil {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return Payload{}, ctx.Err()
		}
	}
	return g.payload, g.err
}

func (g *countingGenerator) GenerateExplanation(_ context.Context, _, _ string) (string, error) {
	g.explanations.Add(1)
	if g.gate != nil {
		<-g.gate
	}
	return g.explanation, g.err
}

type memTranslations struct {
	mu   sync.Mutex
	rows map[string]queries.Translation
}

func newMemTranslations() *memTranslations {
	return &memTranslations{rows: map[string]queries.Translation{}}
}

func (m *memTranslations) Get(_ context.Context, qid, lang string) (queries.Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[qid+":"+lang]
	if !ok {
		return queries.Translation{}, pgx.ErrNoRows
	}
	return row, nil
}

func (m *memTranslations) Upsert(_ context.Context, t queries.Translation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.QuestionID+":"+t.LanguageCode] = t
	return nil
}

func (m *memTranslations) UpsertExplanation(_ context.Context, qid, lang, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[qid+":"+lang]
	row.QuestionID, row.LanguageCode, row.Explanation = qid, lang, text
	m.rows[qid+":"+lang] = row
	return nil
}

type memCatalog struct {
	mu        sync.Mutex
	questions map[string]question.Question
}

func (c *memCatalog) Get(_ context.Context, id string) (question.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.questions[id]
	if !ok {
		return question.Question{}, question.ErrNotFound
	}
	return q, nil
}

func (c *memCatalog) SetExplanation(_ context.Context, id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.questions[id]
	q.Explanation = text
	c.questions[id] = q
	return nil
}

func sampleCatalog() *memCatalog {
	return &memCatalog{questions: map[string]question.Question{
		"q1": {
			ID:           "q1",
			CategoryID:   "segnali",
			Prompt:       "Il segnale raffigurato indica una curva pericolosa a destra",
			Options:      []string{"Vero", "Falso"},
			CorrectIndex: 0,
		},
	}}
}
