package rewards

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/db/repository"
)

// memStore is an in-memory stand-in for the profile and progress repositories.
type memStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]queries.Profile
	progress map[uuid.UUID]map[string]int
	failWith error
	loads    int
	// gate, when set before writes start, holds every write until closed.
	gate chan struct{}
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[uuid.UUID]queries.Profile{},
		progress: map[uuid.UUID]map[string]int{},
	}
}

func (m *memStore) seed(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := queries.Profile{
		UserID:              repository.PgUUID(p.UserID),
		Username:            p.Username,
		NativeLanguage:      p.NativeLanguage,
		Hearts:              int32(p.Hearts),
		Xp:                  int32(p.XP),
		Streak:              int32(p.Streak),
		CompletedCategories: p.CompletedCategories,
	}
	if !p.LastStudyDate.IsZero() {
		row.LastStudyDate = pgtype.Date{Time: p.LastStudyDate.Time(), Valid: true}
	}
	m.profiles[p.UserID] = row
}

func (m *memStore) row(id uuid.UUID) queries.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id]
}

func (m *memStore) update(id uuid.UUID, fn func(*queries.Profile)) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	row, ok := m.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&row)
	m.profiles[id] = row
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (queries.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	row, ok := m.profiles[id]
	if !ok {
		return queries.Profile{}, pgx.ErrNoRows
	}
	return row, nil
}

func (m *memStore) Create(_ context.Context, id uuid.UUID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[id] = queries.Profile{UserID: repository.PgUUID(id), Username: username, Hearts: MaxHearts, NativeLanguage: "en"}
	return nil
}

func (m *memStore) SetHearts(_ context.Context, id uuid.UUID, hearts int) error {
	return m.update(id, func(p *queries.Profile) { p.Hearts = int32(hearts) })
}

func (m *memStore) SetXP(_ context.Context, id uuid.UUID, xp int) error {
	return m.update(id, func(p *queries.Profile) { p.Xp = int32(xp) })
}

func (m *memStore) SetStreak(_ context.Context, id uuid.UUID, streak int, last time.Time) error {
	return m.update(id, func(p *queries.Profile) {
		p.Streak = int32(streak)
		p.LastStudyDate = pgtype.Date{Time: last, Valid: !last.IsZero()}
	})
}

func (m *memStore) AddCompletedCategory(_ context.Context, id uuid.UUID, categoryID string) error {
	return m.update(id, func(p *queries.Profile) {
		for _, c := range p.CompletedCategories {
			if c == categoryID {
				return
			}
		}
		p.CompletedCategories = append(p.CompletedCategories, categoryID)
	})
}

func (m *memStore) UpdateDetails(_ context.Context, id uuid.UUID, username, avatarURL, lang string) (queries.Profile, error) {
	err := m.update(id, func(p *queries.Profile) {
		p.Username = username
		p.AvatarUrl = avatarURL
		p.NativeLanguage = lang
	})
	if err != nil {
		return queries.Profile{}, err
	}
	return m.row(id), nil
}

func (m *memStore) List(_ context.Context, id uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for k, v := range m.progress[id] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, id uuid.UUID, qid string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.progress[id] == nil {
		m.progress[id] = map[string]int{}
	}
	m.progress[id][qid] = count
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID, qid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.progress[id], qid)
	return nil
}

func (m *memStore) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func (m *memStore) fail(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

var errRemote = errors.New("remote store unavailable")

type xpSink struct {
	mu    sync.Mutex
	total int
}

func (x *xpSink) RecordXP(_ context.Context, _ uuid.UUID, _ string, amount int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.total += amount
	return nil
}

func (x *xpSink) Total() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.total
}
