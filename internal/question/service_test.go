package question

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

type mockQuestionRepo struct {
	mock.Mock
}

func (m *mockQuestionRepo) Categories(ctx context.Context) ([]queries.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]queries.Category), args.Error(1)
}

func (m *mockQuestionRepo) ByCategory(ctx context.Context, categoryID string) ([]queries.Question, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]queries.Question), args.Error(1)
}

func (m *mockQuestionRepo) ByIDs(ctx context.Context, ids []string) ([]queries.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]queries.Question), args.Error(1)
}

func (m *mockQuestionRepo) Get(ctx context.Context, id string) (queries.Question, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Question), args.Error(1)
}

func (m *mockQuestionRepo) SetExplanation(ctx context.Context, id, text string) error {
	return m.Called(ctx, id, text).Error(0)
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Minute), mr
}

func row(id, cat string) queries.Question {
	return queries.Question{
		ID:                 id,
		CategoryID:         cat,
		QuestionText:       "Il semaforo giallo indica di fermarsi se possibile",
		Options:            []string{"Vero", "Falso"},
		CorrectOptionIndex: 0,
		Difficulty:         1,
	}
}

func TestByCategoryReadsThroughCache(t *testing.T) {
	repo := &mockQuestionRepo{}
	cache, mr := newTestCache(t)
	svc := NewService(repo, cache, zerolog.Nop())

	repo.On("ByCategory", mock.Anything, "segnali").
		Return([]queries.Question{row("q1", "segnali"), row("q2", "segnali")}, nil).Once()

	first, err := svc.ByCategory(context.Background(), "segnali")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, mr.Exists("questions:category:segnali"))

	second, err := svc.ByCategory(context.Background(), "segnali")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestByCategorySkipsMalformedRows(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())

	bad := row("q2", "segnali")
	bad.CorrectOptionIndex = 2
	single := row("q3", "segnali")
	single.Options = []string{"Vero"}

	repo.On("ByCategory", mock.Anything, "segnali").
		Return([]queries.Question{row("q1", "segnali"), bad, single}, nil)

	qs, err := svc.ByCategory(context.Background(), "segnali")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "q1", qs[0].ID)
}

func TestByIDsPreservesRequestOrder(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())

	ids := []string{"q3", "missing", "q1"}
	repo.On("ByIDs", mock.Anything, ids).
		Return([]queries.Question{row("q1", "a"), row("q3", "b")}, nil)

	qs, err := svc.ByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "q3", qs[0].ID)
	assert.Equal(t, "q1", qs[1].ID)
}

func TestGetMapsNoRows(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())
	repo.On("Get", mock.Anything, "nope").Return(queries.Question{}, pgx.ErrNoRows)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetExplanationInvalidatesCategory(t *testing.T) {
	repo := &mockQuestionRepo{}
	cache, mr := newTestCache(t)
	svc := NewService(repo, cache, zerolog.Nop())

	require.NoError(t, cache.Set(context.Background(), "segnali", []Question{{ID: "q1"}}))
	repo.On("Get", mock.Anything, "q1").Return(row("q1", "segnali"), nil)
	repo.On("SetExplanation", mock.Anything, "q1", "Perché il giallo precede il rosso.").Return(nil)

	require.NoError(t, svc.SetExplanation(context.Background(), "q1", "Perché il giallo precede il rosso."))
	assert.False(t, mr.Exists("questions:category:segnali"))
	repo.AssertExpectations(t)
}

func TestPatchApply(t *testing.T) {
	q := Question{ID: "q1", Prompt: "old", Explanation: ""}
	text := "spiegazione"
	out := Patch{Explanation: &text}.Apply(q)

	assert.Equal(t, "spiegazione", out.Explanation)
	assert.Equal(t, "old", out.Prompt)
	assert.Equal(t, "", q.Explanation)
}

func TestCorrectAnswer(t *testing.T) {
	q := Question{Options: []string{"Vero", "Falso"}, CorrectIndex: 1}
	require.NoError(t, q.Validate())
	assert.Equal(t, "Falso", q.CorrectAnswer())

	q.CorrectIndex = 5
	assert.Error(t, q.Validate())
	assert.Equal(t, "", q.CorrectAnswer())
}

func TestHandleCategoryQuestions(t *testing.T) {
	repo := &mockQuestionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())
	repo.On("ByCategory", mock.Anything, "precedenza").
		Return([]queries.Question{row("q1", "precedenza")}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/categories/{id}/questions", NewHTTPHandler(svc, zerolog.Nop()).HandleCategoryQuestions)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/categories/precedenza/questions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"q1"`)
}
