package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
)

// ListCache defines cache behavior (implemented by Redis-backed Cache).
type ListCache interface {
	Get(ctx context.Context, categoryID string) ([]Question, error)
	Set(ctx context.Context, categoryID string, qs []Question) error
	Invalidate(ctx context.Context, categoryID string) error
}

type questionRepo interface {
	Categories(ctx context.Context) ([]queries.Category, error)
	ByCategory(ctx context.Context, categoryID string) ([]queries.Question, error)
	ByIDs(ctx context.Context, ids []string) ([]queries.Question, error)
	Get(ctx context.Context, id string) (queries.Question, error)
	SetExplanation(ctx context.Context, id, text string) error
}

// Service is the read side of the question catalog.
type Service struct {
	repo   questionRepo
	cache  ListCache
	logger zerolog.Logger
}

func NewService(repo questionRepo, cache ListCache, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger.With().Str("component", "question_catalog").Logger(),
	}
}

// Categories lists every category in display order.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, Category{
			ID:         row.ID,
			Slug:       row.Slug,
			TitleIT:    row.TitleIt,
			TitleEN:    row.TitleEn,
			IconName:   row.IconName,
			OrderIndex: int(row.OrderIndex),
		})
	}
	return out, nil
}

// ByCategory returns the ordered questions of a category, cache first.
func (s *Service) ByCategory(ctx context.Context, categoryID string) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, categoryID); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Str("category_id", categoryID).Msg("question cache read failed")
		}
	}

	rows, err := s.repo.ByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list questions for %s: %w", categoryID, err)
	}
	qs := s.toDomain(rows)

	if s.cache != nil && len(qs) > 0 {
		if err := s.cache.Set(ctx, categoryID, qs); err != nil {
			s.logger.Warn().Err(err).Str("category_id", categoryID).Msg("question cache write failed")
		}
	}
	return qs, nil
}

// ByIDs loads questions for review and bookmark quizzes, preserving the order of ids.
func (s *Service) ByIDs(ctx context.Context, ids []string) ([]Question, error) {
	rows, err := s.repo.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[string]Question, len(rows))
	for _, q := range s.toDomain(rows) {
		byID[q.ID] = q
	}
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// Get returns ErrNotFound for unknown ids.
func (s *Service) Get(ctx context.Context, id string) (Question, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, fmt.Errorf("get question %s: %w", id, err)
	}
	return fromRow(row), nil
}

// SetExplanation stores a generated source-language explanation and drops
// the cached category list so the next load sees it.
func (s *Service) SetExplanation(ctx context.Context, id, text string) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetExplanation(ctx, id, text); err != nil {
		return fmt.Errorf("set explanation %s: %w", id, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, q.CategoryID); err != nil {
			s.logger.Warn().Err(err).Str("category_id", q.CategoryID).Msg("question cache invalidate failed")
		}
	}
	return nil
}

func (s *Service) toDomain(rows []queries.Question) []Question {
	out := make([]Question, 0, len(rows))
	for _, row := range rows {
		q := fromRow(row)
		if err := q.Validate(); err != nil {
			s.logger.Warn().Err(err).Msg("skipping malformed question")
			continue
		}
		out = append(out, q)
	}
	return out
}

func fromRow(row queries.Question) Question {
	return Question{
		ID:           row.ID,
		CategoryID:   row.CategoryID,
		Prompt:       row.QuestionText,
		ImageURL:     row.ImageUrl,
		Options:      row.Options,
		CorrectIndex: int(row.CorrectOptionIndex),
		Explanation:  row.ExplanationIt,
		Difficulty:   int(row.Difficulty),
	}
}
