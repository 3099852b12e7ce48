package rewards

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/persist"
)

type profileRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (queries.Profile, error)
	Create(ctx context.Context, userID uuid.UUID, username string) error
	SetHearts(ctx context.Context, userID uuid.UUID, hearts int) error
	SetXP(ctx context.Context, userID uuid.UUID, xp int) error
	SetStreak(ctx context.Context, userID uuid.UUID, streak int, lastStudy time.Time) error
	AddCompletedCategory(ctx context.Context, userID uuid.UUID, categoryID string) error
	UpdateDetails(ctx context.Context, userID uuid.UUID, username, avatarURL, nativeLanguage string) (queries.Profile, error)
}

type progressRepo interface {
	List(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	Save(ctx context.Context, userID uuid.UUID, questionID string, reviewCount int) error
	Delete(ctx context.Context, userID uuid.UUID, questionID string) error
}

// XPRecorder receives XP gains, e.g. for leaderboards.
type XPRecorder interface {
	RecordXP(ctx context.Context, userID uuid.UUID, displayName string, amount int) error
}

// Deps are the collaborators a Ledger writes through.
type Deps struct {
	Profiles  profileRepo
	Progress  progressRepo
	Persister *persist.Persister
	Clock     Clock
	XP        XPRecorder
	Logger    zerolog.Logger
	// OnChange is called with a profile copy after every local mutation.
	OnChange func(Profile)
}

// Ledger owns one user's hearts, XP, streak, completed categories and
// mistake review counters. Every mutator applies the change in memory under
// the ledger lock, then queues the remote write; the in-memory value stays
// authoritative whether or not the write succeeds.
type Ledger struct {
	deps Deps

	mu        sync.Mutex
	profile   Profile
	mistakes  map[string]int
	checkedOn Date
}

// Load assembles the ledger for userID and runs the first StartDay.
// uuid.Nil yields an anonymous ledger on which every mutator is a no-op.
func Load(ctx context.Context, deps Deps, userID uuid.UUID) (*Ledger, error) {
	if deps.Clock == nil {
		return nil, errors.New("rewards: clock required")
	}
	l := &Ledger{
		deps:     deps,
		profile:  DefaultProfile(userID),
		mistakes: map[string]int{},
	}
	if userID == uuid.Nil {
		return l, nil
	}

	row, err := deps.Profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := deps.Profiles.Create(ctx, userID, ""); err != nil {
			return nil, fmt.Errorf("create missing profile: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	default:
		l.profile = profileFromRow(row)
	}

	mistakes, err := deps.Progress.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load mistakes: %w", err)
	}
	for qid, count := range mistakes {
		l.mistakes[qid] = count
	}

	l.StartDay()
	return l, nil
}

// UserID returns uuid.Nil for anonymous ledgers.
func (l *Ledger) UserID() uuid.UUID {
	return l.profile.UserID
}

func (l *Ledger) Anonymous() bool {
	return l.profile.UserID == uuid.Nil
}

// Profile returns a copy of the current state.
func (l *Ledger) Profile() Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.clone()
}

// Mistakes returns the tracked question ids in sorted order.
func (l *Ledger) Mistakes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.mistakes))
	for id := range l.mistakes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReviewCount reports the review counter and whether qid is tracked.
func (l *Ledger) ReviewCount(qid string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.mistakes[qid]
	return n, ok
}

// UpdateHearts adds delta and clamps to [0, MaxHearts].
func (l *Ledger) UpdateHearts(delta int) int {
	l.mu.Lock()
	if l.Anonymous() {
		defer l.mu.Unlock()
		return l.profile.Hearts
	}
	l.profile.Hearts = clampHearts(l.profile.Hearts + delta)
	hearts := l.profile.Hearts
	l.commit("hearts", func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.SetHearts(ctx, id, hearts)
	})
	return hearts
}

// AddXP adds a non-negative amount; negative amounts are ignored.
func (l *Ledger) AddXP(amount int) int {
	l.mu.Lock()
	if l.Anonymous() || amount < 0 {
		defer l.mu.Unlock()
		if amount < 0 {
			l.deps.Logger.Debug().Int("amount", amount).Msg("ignoring negative xp")
		}
		return l.profile.XP
	}
	l.profile.XP += amount
	xp := l.profile.XP
	name := l.profile.Username
	if l.deps.XP != nil && amount > 0 {
		l.queue("leaderboard_xp", 0, func(ctx context.Context, id uuid.UUID) error {
			return l.deps.XP.RecordXP(ctx, id, name, amount)
		})
	}
	l.commit("xp", func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.SetXP(ctx, id, xp)
	})
	return xp
}

// CheckStreak advances the day streak once per calendar day: same day is a
// no-op, the day after the last study day extends it, anything else restarts at 1.
func (l *Ledger) CheckStreak() int {
	today := l.deps.Clock.Today()

	l.mu.Lock()
	if l.Anonymous() || l.profile.LastStudyDate == today {
		defer l.mu.Unlock()
		return l.profile.Streak
	}
	if !l.profile.LastStudyDate.IsZero() && l.profile.LastStudyDate.AddDays(1) == today {
		l.profile.Streak++
	} else {
		l.profile.Streak = 1
	}
	l.profile.LastStudyDate = today
	streak := l.profile.Streak
	l.commit("streak", func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.SetStreak(ctx, id, streak, today.Time())
	})
	return streak
}

// CompleteCategory records the category once and grants bonus hearts.
// It reports whether the category was newly completed.
func (l *Ledger) CompleteCategory(categoryID string) bool {
	l.mu.Lock()
	if l.Anonymous() || categoryID == "" || l.profile.hasCompleted(categoryID) {
		l.mu.Unlock()
		return false
	}
	l.profile.CompletedCategories = append(l.profile.CompletedCategories, categoryID)
	l.profile.Hearts = clampHearts(l.profile.Hearts + CategoryBonusHearts)
	hearts := l.profile.Hearts
	l.queue("completed_categories", 0, func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.AddCompletedCategory(ctx, id, categoryID)
	})
	l.commit("hearts", func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.SetHearts(ctx, id, hearts)
	})
	return true
}

// RecordWrongAnswer starts tracking qid with a zero review count. Already
// tracked questions keep their count.
func (l *Ledger) RecordWrongAnswer(qid string) bool {
	l.mu.Lock()
	if l.Anonymous() || qid == "" {
		l.mu.Unlock()
		return false
	}
	if _, ok := l.mistakes[qid]; ok {
		l.mu.Unlock()
		return false
	}
	l.mistakes[qid] = 0
	l.commit("mistake:"+qid, func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Progress.Save(ctx, id, qid, 0)
	})
	return true
}

// RecordCorrectReview bumps the review counter of a tracked mistake and
// drops it once MasteryThreshold is reached. Untracked ids are ignored.
func (l *Ledger) RecordCorrectReview(qid string) (count int, mastered bool) {
	l.mu.Lock()
	current, ok := l.mistakes[qid]
	if l.Anonymous() || !ok {
		l.mu.Unlock()
		return 0, false
	}
	count = current + 1
	if count >= MasteryThreshold {
		delete(l.mistakes, qid)
		l.commit("mistake:"+qid, func(ctx context.Context, id uuid.UUID) error {
			return l.deps.Progress.Delete(ctx, id, qid)
		})
		return count, true
	}
	l.mistakes[qid] = count
	l.commit("mistake:"+qid, func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Progress.Save(ctx, id, qid, count)
	})
	return count, false
}

// StartDay runs the daily hearts check the first time the ledger is used on
// a calendar day. Later calls the same day do nothing, so hearts lost to
// wrong answers stay lost until tomorrow.
func (l *Ledger) StartDay() bool {
	today := l.deps.Clock.Today()
	l.mu.Lock()
	if l.checkedOn == today {
		l.mu.Unlock()
		return false
	}
	l.checkedOn = today
	l.mu.Unlock()
	return l.ResetDailyHearts()
}

// ResetDailyHearts refills hearts when the last study day is not today.
// It is independent of the streak.
func (l *Ledger) ResetDailyHearts() bool {
	today := l.deps.Clock.Today()

	l.mu.Lock()
	if l.Anonymous() || l.profile.LastStudyDate == today || l.profile.Hearts == MaxHearts {
		l.mu.Unlock()
		return false
	}
	l.profile.Hearts = MaxHearts
	l.commit("hearts", func(ctx context.Context, id uuid.UUID) error {
		return l.deps.Profiles.SetHearts(ctx, id, MaxHearts)
	})
	return true
}

// applyDetails replaces the user-editable fields after a confirmed save.
func (l *Ledger) applyDetails(p Profile) {
	l.mu.Lock()
	l.profile.Username = p.Username
	l.profile.AvatarURL = p.AvatarURL
	l.profile.NativeLanguage = p.NativeLanguage
	snap := l.profile.clone()
	l.mu.Unlock()
	l.notify(snap)
}

// commit must be called with l.mu held; it releases the lock, queues the
// write with a fresh sequence number and publishes the new state.
func (l *Ledger) commit(field string, run func(ctx context.Context, id uuid.UUID) error) {
	var seq uint64
	if l.deps.Persister != nil {
		seq = l.deps.Persister.NextSeq()
	}
	snap := l.profile.clone()
	l.mu.Unlock()

	l.queue(field, seq, run)
	l.notify(snap)
}

func (l *Ledger) queue(field string, seq uint64, run func(ctx context.Context, id uuid.UUID) error) {
	userID := l.profile.UserID
	if l.deps.Persister == nil {
		return
	}
	l.deps.Persister.Submit(persist.Task{
		Key:   userID.String() + ":" + field,
		Field: strings.SplitN(field, ":", 2)[0],
		Seq:   seq,
		Run: func(ctx context.Context) error {
			return run(ctx, userID)
		},
	})
}

func (l *Ledger) notify(p Profile) {
	if l.deps.OnChange != nil {
		l.deps.OnChange(p)
	}
}
