package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/question"
	"github.com/gokatarajesh/patente-quiz/internal/registry"
	"github.com/gokatarajesh/patente-quiz/internal/rewards"
	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

var (
	ErrNoSession      = errors.New("no active quiz session")
	ErrNoQuestion     = errors.New("no current question")
	ErrAlreadyChecked = errors.New("question already checked")
	ErrInvalidOption  = errors.New("option index out of range")
	ErrInvalidMode    = errors.New("unknown quiz mode")
	ErrSignInRequired = errors.New("sign in required")
)

// Ledger is the slice of the rewards ledger a quiz drives.
type Ledger interface {
	AddXP(amount int) int
	CheckStreak() int
	UpdateHearts(delta int) int
	RecordWrongAnswer(qid string) bool
	RecordCorrectReview(qid string) (int, bool)
	CompleteCategory(categoryID string) bool
	Profile() rewards.Profile
	Mistakes() []string
	StartDay() bool
}

// Marks lists a user's bookmarked or flagged questions.
type Marks interface {
	List(kind registry.Kind) []string
}

type questionSource interface {
	ByCategory(ctx context.Context, categoryID string) ([]question.Question, error)
	ByIDs(ctx context.Context, ids []string) ([]question.Question, error)
}

type explainer interface {
	BackfillExplanation(questionID, lang string, onDone func(text string))
}

// Publisher pushes messages to a user's live connections.
type Publisher interface {
	Publish(userID uuid.UUID, msgType string, payload interface{}) error
}

// Deps wires a Service.
type Deps struct {
	Hub          *Hub
	Questions    questionSource
	Ledgers      func(ctx context.Context, userID uuid.UUID) (Ledger, error)
	Marks        func(ctx context.Context, userID uuid.UUID) (Marks, error)
	Explainer    explainer
	Publisher    Publisher
	XPPerCorrect int
	// SourceLanguage is the language explanations are backfilled in.
	SourceLanguage string
}

// Service runs quizzes: it owns the sessions and feeds answers into the
// rewards ledger.
type Service struct {
	deps   Deps
	logger zerolog.Logger
}

func NewService(deps Deps, logger zerolog.Logger) *Service {
	if deps.Hub == nil {
		deps.Hub = NewHub()
	}
	if deps.XPPerCorrect <= 0 {
		deps.XPPerCorrect = 10
	}
	if deps.SourceLanguage == "" {
		deps.SourceLanguage = question.SourceLanguage
	}
	return &Service{deps: deps, logger: logger.With().Str("component", "quiz").Logger()}
}

// StartRequest selects the questions of a new session.
type StartRequest struct {
	Mode       Mode   `json:"mode"`
	CategoryID string `json:"category_id"`
	StartIndex int    `json:"start_index"`
}

// CheckResult reports the outcome of one check.
type CheckResult struct {
	Correct      bool     `json:"correct"`
	CorrectIndex int      `json:"correct_option_index"`
	Explanation  string   `json:"explanation_it,omitempty"`
	Hearts       int      `json:"hearts"`
	XP           int      `json:"xp"`
	Streak       int      `json:"streak"`
	ReviewCount  int      `json:"review_count,omitempty"`
	Mastered     bool     `json:"mastered,omitempty"`
	Session      Snapshot `json:"session"`
}

// Start builds a session for userID and replaces any previous one.
// Zero questions is not an error: the session is simply Empty.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, req StartRequest) (Snapshot, error) {
	if userID == uuid.Nil {
		return Snapshot{}, ErrSignInRequired
	}
	if req.Mode == "" {
		req.Mode = ModeCategory
	}
	if !req.Mode.valid() {
		return Snapshot{}, ErrInvalidMode
	}

	// Starting a session is the daily hearts checkpoint. A failure here
	// surfaces again on the first check, so it does not block the start.
	if ledger, err := s.deps.Ledgers(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("daily hearts check skipped")
	} else {
		ledger.StartDay()
	}

	qs, err := s.load(ctx, userID, req)
	if err != nil {
		return Snapshot{}, err
	}

	session := NewSession()
	session.Start(qs, req.StartIndex)
	session.setOrigin(req.Mode, req.CategoryID)
	s.deps.Hub.Put(userID, session)

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("mode", string(req.Mode)).
		Str("category_id", req.CategoryID).
		Int("questions", len(qs)).
		Msg("quiz started")

	s.backfillCurrent(userID, session)
	return session.Snapshot(), nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID, req StartRequest) ([]question.Question, error) {
	switch req.Mode {
	case ModeCategory:
		if req.CategoryID == "" {
			return nil, fmt.Errorf("%w: category_id required", ErrInvalidMode)
		}
		return s.deps.Questions.ByCategory(ctx, req.CategoryID)
	case ModeReview:
		ledger, err := s.deps.Ledgers(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.byIDs(ctx, ledger.Mistakes())
	default:
		marks, err := s.deps.Marks(ctx, userID)
		if err != nil {
			return nil, err
		}
		kind := registry.Bookmarks
		if req.Mode == ModeFlags {
			kind = registry.Flags
		}
		return s.byIDs(ctx, marks.List(kind))
	}
}

func (s *Service) byIDs(ctx context.Context, ids []string) ([]question.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.deps.Questions.ByIDs(ctx, ids)
}

// Current returns the user's session snapshot.
func (s *Service) Current(userID uuid.UUID) (Snapshot, error) {
	session, ok := s.deps.Hub.Get(userID)
	if !ok {
		return Snapshot{}, ErrNoSession
	}
	return session.Snapshot(), nil
}

// Check grades optionIndex against the current question and applies the
// rewards: correct answers earn XP and count toward the streak, wrong
// answers cost a heart and become mistakes to review.
func (s *Service) Check(ctx context.Context, userID uuid.UUID, optionIndex int) (CheckResult, error) {
	session, ok := s.deps.Hub.Get(userID)
	if !ok {
		return CheckResult{}, ErrNoSession
	}
	q, ok := session.CurrentQuestion()
	if !ok || session.State() != StateInProgress {
		return CheckResult{}, ErrNoQuestion
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return CheckResult{}, ErrInvalidOption
	}

	ledger, err := s.deps.Ledgers(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}
	if _, first := session.markChecked(); !first {
		return CheckResult{}, ErrAlreadyChecked
	}

	correct := optionIndex == q.CorrectIndex
	session.Answer(correct)

	result := CheckResult{Correct: correct, CorrectIndex: q.CorrectIndex, Explanation: q.Explanation}
	mode, _ := session.origin()
	if correct {
		ledger.AddXP(s.deps.XPPerCorrect)
		ledger.CheckStreak()
		if mode == ModeReview {
			result.ReviewCount, result.Mastered = ledger.RecordCorrectReview(q.ID)
		}
	} else {
		ledger.UpdateHearts(-1)
		ledger.RecordWrongAnswer(q.ID)
	}

	p := ledger.Profile()
	result.Hearts, result.XP, result.Streak = p.Hearts, p.XP, p.Streak
	result.Session = session.Snapshot()
	return result, nil
}

// Continue moves past the current question. Finishing a category session
// marks the category complete.
func (s *Service) Continue(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	session, ok := s.deps.Hub.Get(userID)
	if !ok {
		return Snapshot{}, ErrNoSession
	}
	wasComplete := session.State() == StateComplete
	session.Advance()

	if !wasComplete && session.State() == StateComplete {
		if mode, categoryID := session.origin(); mode == ModeCategory && categoryID != "" {
			ledger, err := s.deps.Ledgers(ctx, userID)
			if err != nil {
				s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("load ledger for completion failed")
			} else if ledger.CompleteCategory(categoryID) {
				s.logger.Info().Str("user_id", userID.String()).Str("category_id", categoryID).Msg("category completed")
			}
		}
	} else {
		s.backfillCurrent(userID, session)
	}
	return session.Snapshot(), nil
}

// GoTo jumps to index within the user's session.
func (s *Service) GoTo(userID uuid.UUID, index int) (Snapshot, error) {
	session, ok := s.deps.Hub.Get(userID)
	if !ok {
		return Snapshot{}, ErrNoSession
	}
	session.GoTo(index)
	s.backfillCurrent(userID, session)
	return session.Snapshot(), nil
}

// Leave discards the user's session.
func (s *Service) Leave(userID uuid.UUID) {
	s.deps.Hub.Drop(userID)
}

// backfillCurrent asks for a missing explanation without waiting for it.
// The answer patches the session and is pushed to the user.
func (s *Service) backfillCurrent(userID uuid.UUID, session *Session) {
	if s.deps.Explainer == nil {
		return
	}
	q, ok := session.CurrentQuestion()
	if !ok || q.Explanation != "" {
		return
	}
	s.deps.Explainer.BackfillExplanation(q.ID, s.deps.SourceLanguage, func(text string) {
		if !session.UpdateQuestion(q.ID, question.Patch{Explanation: &text}) {
			return
		}
		if s.deps.Publisher == nil {
			return
		}
		payload := map[string]string{"question_id": q.ID, "explanation_it": text}
		if err := s.deps.Publisher.Publish(userID, ws.TypeQuizUpdated, payload); err != nil {
			s.logger.Debug().Err(err).Msg("quiz update publish failed")
		}
	})
}
