package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/patente-quiz/internal/persist"
)

type memMarks struct {
	mu      sync.Mutex
	sets    map[string]map[string]bool
	lists   int
	failAdd error
}

func newMemMarks() *memMarks {
	return &memMarks{sets: map[string]map[string]bool{}}
}

func (m *memMarks) key(kind string, userID uuid.UUID) string { return kind + "/" + userID.String() }

func (m *memMarks) List(_ context.Context, kind string, userID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	var out []string
	for id := range m.sets[m.key(kind, userID)] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memMarks) Add(_ context.Context, kind string, userID uuid.UUID, qid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAdd != nil {
		return m.failAdd
	}
	k := m.key(kind, userID)
	if m.sets[k] == nil {
		m.sets[k] = map[string]bool{}
	}
	m.sets[k][qid] = true
	return nil
}

func (m *memMarks) Remove(_ context.Context, kind string, userID uuid.UUID, qid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets[m.key(kind, userID)], qid)
	return nil
}

func (m *memMarks) has(kind string, userID uuid.UUID, qid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[m.key(kind, userID)][qid]
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ uuid.UUID, msgType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, msgType)
	return nil
}

func flush(t *testing.T, p *persist.Persister) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Flush(ctx))
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	repo := newMemMarks()
	p := persist.New(zerolog.Nop(), time.Second)
	user := uuid.New()

	reg, err := Load(context.Background(), repo, p, user)
	require.NoError(t, err)

	assert.True(t, reg.Toggle(Bookmarks, "q1"))
	assert.True(t, reg.Contains(Bookmarks, "q1"))
	assert.False(t, reg.Toggle(Bookmarks, "q1"))
	assert.False(t, reg.Contains(Bookmarks, "q1"))
	assert.Empty(t, reg.List(Bookmarks))

	flush(t, p)
	assert.False(t, repo.has("bookmarks", user, "q1"))
}

func TestToggleSetsAreIndependent(t *testing.T) {
	repo := newMemMarks()
	p := persist.New(zerolog.Nop(), time.Second)
	user := uuid.New()

	reg, err := Load(context.Background(), repo, p, user)
	require.NoError(t, err)

	reg.Toggle(Flags, "q7")
	reg.Toggle(Bookmarks, "q2")
	reg.Toggle(Bookmarks, "q1")

	assert.Equal(t, []string{"q1", "q2"}, reg.List(Bookmarks))
	assert.Equal(t, []string{"q7"}, reg.List(Flags))
	assert.False(t, reg.Contains(Flags, "q1"))

	flush(t, p)
	assert.True(t, repo.has("flags", user, "q7"))
	assert.True(t, repo.has("bookmarks", user, "q1"))
	assert.False(t, repo.has("flags", user, "q2"))
}

func TestLoadReadsStoredSets(t *testing.T) {
	repo := newMemMarks()
	user := uuid.New()
	require.NoError(t, repo.Add(context.Background(), "flags", user, "q3"))

	reg, err := Load(context.Background(), repo, persist.New(zerolog.Nop(), time.Second), user)
	require.NoError(t, err)
	assert.True(t, reg.Contains(Flags, "q3"))
	assert.False(t, reg.Contains(Bookmarks, "q3"))
}

func TestAnonymousRegistryIsNoop(t *testing.T) {
	repo := newMemMarks()
	reg, err := Load(context.Background(), repo, persist.New(zerolog.Nop(), time.Second), uuid.Nil)
	require.NoError(t, err)

	assert.False(t, reg.Toggle(Bookmarks, "q1"))
	assert.Empty(t, reg.List(Bookmarks))
	assert.Zero(t, repo.lists)
}

func TestToggleKeepsLocalStateWhenStoreFails(t *testing.T) {
	repo := newMemMarks()
	repo.failAdd = errors.New("connection reset")
	p := persist.New(zerolog.Nop(), time.Second)
	var failed int
	var mu sync.Mutex
	p.OnError(func(persist.Task, error) {
		mu.Lock()
		failed++
		mu.Unlock()
	})

	reg, err := Load(context.Background(), repo, p, uuid.New())
	require.NoError(t, err)

	assert.True(t, reg.Toggle(Bookmarks, "q1"))
	flush(t, p)

	assert.True(t, reg.Contains(Bookmarks, "q1"))
	mu.Lock()
	assert.Equal(t, 1, failed)
	mu.Unlock()
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("flags")
	assert.True(t, ok)
	assert.Equal(t, Flags, k)

	_, ok = ParseKind("favourites")
	assert.False(t, ok)
}

func TestServiceCachesAndPublishes(t *testing.T) {
	repo := newMemMarks()
	pub := &recordingPublisher{}
	p := persist.New(zerolog.Nop(), time.Second)
	svc := NewService(repo, p, pub, zerolog.Nop())
	user := uuid.New()

	first, err := svc.Registry(context.Background(), user)
	require.NoError(t, err)
	second, err := svc.Registry(context.Background(), user)
	require.NoError(t, err)
	assert.Same(t, first, second)

	first.Toggle(Bookmarks, "q1")
	flush(t, p)

	pub.mu.Lock()
	assert.Equal(t, []string{"registry_updated"}, pub.types)
	pub.mu.Unlock()

	svc.Drop(user)
	third, err := svc.Registry(context.Background(), user)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, third.Contains(Bookmarks, "q1"))
}

func TestServiceSweepEvictsIdleRegistries(t *testing.T) {
	repo := newMemMarks()
	p := persist.New(zerolog.Nop(), time.Second)
	svc := NewService(repo, p, nil, zerolog.Nop())
	user := uuid.New()

	first, err := svc.Registry(context.Background(), user)
	require.NoError(t, err)
	first.Toggle(Bookmarks, "q1")
	flush(t, p)

	assert.Zero(t, svc.Sweep(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, svc.Sweep(time.Now().Add(time.Minute)))

	second, err := svc.Registry(context.Background(), user)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"q1"}, second.List(Bookmarks))
}
