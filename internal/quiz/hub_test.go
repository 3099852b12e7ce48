package quiz

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSweepDropsIdleSessions(t *testing.T) {
	hub := NewHub()
	stale, fresh := uuid.New(), uuid.New()

	old := NewSession()
	old.touchedAt = time.Now().Add(-3 * time.Hour)
	hub.Put(stale, old)
	hub.Put(fresh, NewSession())

	assert.Equal(t, 1, hub.Sweep(time.Now().Add(-2*time.Hour)))
	_, ok := hub.Get(stale)
	assert.False(t, ok)
	_, ok = hub.Get(fresh)
	assert.True(t, ok)
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	hub := NewHub()
	old := NewSession()
	old.touchedAt = time.Now().Add(-time.Hour)
	hub.Put(uuid.New(), old)

	sw := NewSweeper(hub, time.Minute, time.Second, zerolog.Nop())
	require.NoError(t, sw.Start())
	defer sw.Stop()

	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 3*time.Second, 20*time.Millisecond)
}

type countingEvictor struct{ calls atomic.Int32 }

func (e *countingEvictor) Sweep(time.Time) int {
	e.calls.Add(1)
	return 1
}

func TestSweeperSweepsTrackedCaches(t *testing.T) {
	ledgers := &countingEvictor{}
	sw := NewSweeper(NewHub(), time.Minute, time.Second, zerolog.Nop())
	sw.Track("ledgers", ledgers)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	assert.Eventually(t, func() bool { return ledgers.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}
