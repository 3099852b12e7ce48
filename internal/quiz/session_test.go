package quiz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/patente-quiz/internal/question"
)

func questions(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			CategoryID:   "segnali",
			Prompt:       fmt.Sprintf("Domanda %d", i+1),
			Options:      []string{"Vero", "Falso"},
			CorrectIndex: i % 2,
		}
	}
	return qs
}

func TestAdvanceCompletesOnlyOnNthCall(t *testing.T) {
	for _, n := range []int{1, 2, 5, 30} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewSession()
			s.Start(questions(n), 0)

			for i := 0; i < n-1; i++ {
				s.Advance()
				assert.Equal(t, StateInProgress, s.State())
			}
			s.Advance()

			snap := s.Snapshot()
			assert.True(t, snap.Complete)
			assert.Equal(t, StateComplete, snap.State)
			assert.Equal(t, n-1, snap.Index)
		})
	}
}

func TestAdvanceMarksPreviousAnswered(t *testing.T) {
	s := NewSession()
	s.Start(questions(3), 0)
	s.Advance()
	s.Advance()

	snap := s.Snapshot()
	assert.Equal(t, []int{0, 1}, snap.Answered)
	assert.Equal(t, "q3", snap.Current.ID)
}

func TestEmptyStart(t *testing.T) {
	s := NewSession()
	s.Start(nil, 0)

	_, ok := s.CurrentQuestion()
	assert.False(t, ok)
	assert.Equal(t, StateEmpty, s.State())

	s.Advance()
	s.Answer(true)
	snap := s.Snapshot()
	assert.False(t, snap.Complete)
	assert.Zero(t, snap.Correct)
	assert.Nil(t, snap.Current)
}

func TestStartResetsCounters(t *testing.T) {
	s := NewSession()
	s.Start(questions(2), 0)
	s.Answer(true)
	s.Answer(false)
	s.Advance()
	s.Advance()
	require.Equal(t, StateComplete, s.State())

	s.Start(questions(4), 2)
	snap := s.Snapshot()
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 2, snap.Index)
	assert.Zero(t, snap.Correct)
	assert.Zero(t, snap.Incorrect)
	assert.Empty(t, snap.Answered)
}

func TestStartIndexOutOfRangeBeginsAtZero(t *testing.T) {
	s := NewSession()
	s.Start(questions(3), 7)
	assert.Equal(t, 0, s.Snapshot().Index)

	s.Start(questions(3), -1)
	assert.Equal(t, 0, s.Snapshot().Index)
}

func TestAnswerCountsWithoutMoving(t *testing.T) {
	s := NewSession()
	s.Start(questions(3), 0)
	s.Answer(true)
	s.Answer(true)
	s.Answer(false)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Correct)
	assert.Equal(t, 1, snap.Incorrect)
	assert.Equal(t, 0, snap.Index)
}

func TestGoTo(t *testing.T) {
	s := NewSession()
	s.Start(questions(5), 0)

	s.GoTo(3)
	assert.Equal(t, 3, s.Snapshot().Index)

	s.GoTo(5)
	s.GoTo(-1)
	assert.Equal(t, 3, s.Snapshot().Index)
}

func TestCompleteIsTerminal(t *testing.T) {
	s := NewSession()
	s.Start(questions(1), 0)
	s.Advance()
	require.Equal(t, StateComplete, s.State())

	s.Advance()
	s.GoTo(0)
	s.Answer(true)
	snap := s.Snapshot()
	assert.Equal(t, StateComplete, snap.State)
	assert.Zero(t, snap.Correct)
}

func TestUpdateQuestionKeepsPosition(t *testing.T) {
	s := NewSession()
	s.Start(questions(3), 0)
	s.Answer(false)
	s.Advance()

	text := "Il segnale indica un pericolo."
	assert.True(t, s.UpdateQuestion("q1", question.Patch{Explanation: &text}))
	assert.False(t, s.UpdateQuestion("missing", question.Patch{Explanation: &text}))

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 1, snap.Incorrect)

	s.GoTo(0)
	q, _ := s.CurrentQuestion()
	assert.Equal(t, text, q.Explanation)
	assert.Equal(t, "Domanda 1", q.Prompt)
}

func TestReset(t *testing.T) {
	s := NewSession()
	s.Start(questions(3), 1)
	s.Reset()
	assert.Equal(t, StateEmpty, s.State())
	assert.Zero(t, s.Snapshot().Index)
}

func TestStartCopiesInput(t *testing.T) {
	qs := questions(2)
	s := NewSession()
	s.Start(qs, 0)
	qs[0].Prompt = "changed"

	q, _ := s.CurrentQuestion()
	assert.Equal(t, "Domanda 1", q.Prompt)
}
