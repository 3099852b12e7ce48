package quiz

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hub holds the active session of each user.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uuid.UUID]*Session)}
}

func (h *Hub) Get(userID uuid.UUID) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[userID]
	return s, ok
}

// Put installs s as the user's session, discarding any previous one.
func (h *Hub) Put(userID uuid.UUID, s *Session) {
	h.mu.Lock()
	h.sessions[userID] = s
	h.mu.Unlock()
}

func (h *Hub) Drop(userID uuid.UUID) {
	h.mu.Lock()
	delete(h.sessions, userID)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Sweep drops sessions untouched since before cutoff and returns how many.
func (h *Hub) Sweep(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, s := range h.sessions {
		if s.idleSince().Before(cutoff) {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

// Evictor forgets per-user state untouched since cutoff.
type Evictor interface {
	Sweep(cutoff time.Time) int
}

type sweepTarget struct {
	name string
	e    Evictor
}

// Sweeper periodically evicts idle sessions and any other per-user caches
// registered with Track.
type Sweeper struct {
	hub       *Hub
	idle      time.Duration
	interval  time.Duration
	targets   []sweepTarget
	scheduler *gocron.Scheduler
	logger    zerolog.Logger
}

func NewSweeper(hub *Hub, idle, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if idle <= 0 {
		idle = 2 * time.Hour
	}
	return &Sweeper{
		hub:       hub,
		idle:      idle,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger.With().Str("component", "quiz_sweeper").Logger(),
	}
}

// Track adds e to every sweep. Call before Start.
func (s *Sweeper) Track(name string, e Evictor) {
	s.targets = append(s.targets, sweepTarget{name: name, e: e})
}

func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.idle)
	if n := s.hub.Sweep(cutoff); n > 0 {
		s.logger.Info().Int("evicted", n).Int("active", s.hub.Len()).Msg("idle quiz sessions evicted")
	}
	for _, t := range s.targets {
		if n := t.e.Sweep(cutoff); n > 0 {
			s.logger.Info().Int("evicted", n).Str("cache", t.name).Msg("idle entries evicted")
		}
	}
}
