package quiz

import (
	"sort"
	"sync"
	"time"

	"github.com/gokatarajesh/patente-quiz/internal/question"
)

// State is the traversal state of a Session.
type State string

const (
	StateEmpty      State = "empty"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Mode says where a session's questions came from.
type Mode string

const (
	ModeCategory  Mode = "category"
	ModeReview    Mode = "review"
	ModeBookmarks Mode = "bookmarks"
	ModeFlags     Mode = "flags"
)

func (m Mode) valid() bool {
	switch m {
	case ModeCategory, ModeReview, ModeBookmarks, ModeFlags:
		return true
	}
	return false
}

// Session walks an ordered list of questions. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	questions []question.Question
	index     int
	correct   int
	incorrect int
	complete  bool
	answered  map[int]struct{}
	checked   map[int]struct{}

	mode       Mode
	categoryID string
	touchedAt  time.Time
}

func NewSession() *Session {
	return &Session{
		answered:  map[int]struct{}{},
		checked:   map[int]struct{}{},
		touchedAt: time.Now(),
	}
}

// Start replaces the session contents. An empty list leaves the session
// Empty; a start index out of range begins at 0.
func (s *Session) Start(questions []question.Question, startIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = append([]question.Question(nil), questions...)
	if startIndex < 0 || startIndex >= len(s.questions) {
		startIndex = 0
	}
	s.index = startIndex
	s.correct = 0
	s.incorrect = 0
	s.complete = false
	s.answered = map[int]struct{}{}
	s.checked = map[int]struct{}{}
	s.touch()
}

// Reset empties the session.
func (s *Session) Reset() {
	s.Start(nil, 0)
}

func (s *Session) CurrentQuestion() (question.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() (question.Question, bool) {
	if s.index < 0 || s.index >= len(s.questions) {
		return question.Question{}, false
	}
	return s.questions[s.index], true
}

// Answer counts one check of the current question without moving.
// Each call counts; callers check once per question.
func (s *Session) Answer(isCorrect bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateInProgress {
		return
	}
	if isCorrect {
		s.correct++
	} else {
		s.incorrect++
	}
	s.touch()
}

// Advance moves to the next question, or completes the session when
// already on the last one. The index never passes the last question.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateInProgress {
		return
	}
	if s.index >= len(s.questions)-1 {
		s.complete = true
	} else {
		s.answered[s.index] = struct{}{}
		s.index++
	}
	s.touch()
}

// GoTo jumps to index; out-of-range indexes are ignored.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateInProgress || index < 0 || index >= len(s.questions) {
		return
	}
	s.index = index
	s.touch()
}

// UpdateQuestion patches every question with the given id in place.
// Counters and position are untouched.
func (s *Session) UpdateQuestion(id string, patch question.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.questions {
		if s.questions[i].ID == id {
			s.questions[i] = patch.Apply(s.questions[i])
			found = true
		}
	}
	return found
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case len(s.questions) == 0:
		return StateEmpty
	case s.complete:
		return StateComplete
	}
	return StateInProgress
}

// markChecked records that the current question was checked and reports
// false if it already was.
func (s *Session) markChecked() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checked[s.index]; ok {
		return s.index, false
	}
	s.checked[s.index] = struct{}{}
	return s.index, true
}

func (s *Session) setOrigin(mode Mode, categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.categoryID = categoryID
}

func (s *Session) origin() (Mode, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.categoryID
}

func (s *Session) touch() { s.touchedAt = time.Now() }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// Snapshot is a read model of a Session.
type Snapshot struct {
	State      State              `json:"state"`
	Mode       Mode               `json:"mode,omitempty"`
	CategoryID string             `json:"category_id,omitempty"`
	Index      int                `json:"index"`
	Total      int                `json:"total"`
	Correct    int                `json:"correct"`
	Incorrect  int                `json:"incorrect"`
	Answered   []int              `json:"answered"`
	Complete   bool               `json:"complete"`
	Checked    bool               `json:"checked"`
	Current    *question.Question `json:"current,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state(),
		Mode:       s.mode,
		CategoryID: s.categoryID,
		Index:      s.index,
		Total:      len(s.questions),
		Correct:    s.correct,
		Incorrect:  s.incorrect,
		Complete:   s.complete,
		Answered:   make([]int, 0, len(s.answered)),
	}
	for i := range s.answered {
		snap.Answered = append(snap.Answered, i)
	}
	sort.Ints(snap.Answered)
	if q, ok := s.current(); ok {
		snap.Current = &q
		_, snap.Checked = s.checked[s.index]
	}
	return snap
}
