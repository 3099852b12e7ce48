package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gokatarajesh/patente-quiz/internal/persist"
	ws "github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

var ErrInvalidProfile = errors.New("invalid profile update")

// Publisher pushes messages to a user's live connections.
type Publisher interface {
	Publish(userID uuid.UUID, msgType string, payload interface{}) error
}

// ProfileUpdate is a user-initiated edit. Nil fields keep their value.
type ProfileUpdate struct {
	Username       *string `json:"username"`
	AvatarURL      *string `json:"avatar_url"`
	NativeLanguage *string `json:"native_language"`
}

// Service caches one Ledger per signed-in user.
type Service struct {
	profiles  profileRepo
	progress  progressRepo
	persister *persist.Persister
	clock     Clock
	xp        XPRecorder
	publisher Publisher
	logger    zerolog.Logger

	mu       sync.Mutex
	ledgers  map[uuid.UUID]*Ledger
	lastUsed map[uuid.UUID]time.Time
	loads    singleflight.Group
}

// ServiceOptions holds the optional collaborators.
type ServiceOptions struct {
	XP        XPRecorder
	Publisher Publisher
}

func NewService(profiles profileRepo, progress progressRepo, persister *persist.Persister, clock Clock, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		profiles:  profiles,
		progress:  progress,
		persister: persister,
		clock:     clock,
		xp:        opts.XP,
		publisher: opts.Publisher,
		logger:    logger.With().Str("component", "rewards").Logger(),
		ledgers:   make(map[uuid.UUID]*Ledger),
		lastUsed:  make(map[uuid.UUID]time.Time),
	}
}

// Ledger returns the cached ledger for userID, loading it on first use.
// Concurrent first calls share one load. A cached ledger gets the daily
// hearts check on its first use of each calendar day.
func (s *Service) Ledger(ctx context.Context, userID uuid.UUID) (*Ledger, error) {
	if userID == uuid.Nil {
		return Load(ctx, s.deps(userID), uuid.Nil)
	}

	if l := s.cached(userID); l != nil {
		l.StartDay()
		return l, nil
	}

	v, err, _ := s.loads.Do(userID.String(), func() (interface{}, error) {
		if l := s.cached(userID); l != nil {
			return l, nil
		}

		l, err := Load(ctx, s.deps(userID), userID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.ledgers[userID] = l
		s.lastUsed[userID] = time.Now()
		s.mu.Unlock()
		s.logger.Debug().Str("user_id", userID.String()).Msg("ledger loaded")
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Ledger), nil
}

func (s *Service) cached(userID uuid.UUID) *Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[userID]
	if ok {
		s.lastUsed[userID] = time.Now()
	}
	return l
}

// Drop forgets the cached ledger; the next call reloads from the store.
func (s *Service) Drop(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.ledgers, userID)
	delete(s.lastUsed, userID)
	s.mu.Unlock()
}

// Sweep forgets ledgers not requested since cutoff and returns how many.
func (s *Service) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, at := range s.lastUsed {
		if at.Before(cutoff) {
			delete(s.ledgers, id)
			delete(s.lastUsed, id)
			n++
		}
	}
	return n
}

// UpdateProfile saves user-editable fields. Unlike ledger mutations the
// store error is returned so the caller can surface it.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (Profile, error) {
	if userID == uuid.Nil {
		return Profile{}, fmt.Errorf("%w: authentication required", ErrInvalidProfile)
	}
	ledger, err := s.Ledger(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	current := ledger.Profile()

	next := current
	if upd.Username != nil {
		next.Username = strings.TrimSpace(*upd.Username)
		if len(next.Username) > 40 {
			return Profile{}, fmt.Errorf("%w: username too long", ErrInvalidProfile)
		}
	}
	if upd.AvatarURL != nil {
		next.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.NativeLanguage != nil {
		lang := strings.ToLower(strings.TrimSpace(*upd.NativeLanguage))
		if len(lang) < 2 || len(lang) > 5 {
			return Profile{}, fmt.Errorf("%w: native_language must be a language code", ErrInvalidProfile)
		}
		next.NativeLanguage = lang
	}

	row, err := s.profiles.UpdateDetails(ctx, userID, next.Username, next.AvatarURL, next.NativeLanguage)
	if err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	saved := profileFromRow(row)
	ledger.applyDetails(saved)
	return ledger.Profile(), nil
}

func (s *Service) deps(userID uuid.UUID) Deps {
	return Deps{
		Profiles:  s.profiles,
		Progress:  s.progress,
		Persister: s.persister,
		Clock:     s.clock,
		XP:        s.xp,
		Logger:    s.logger.With().Str("user_id", userID.String()).Logger(),
		OnChange:  s.publish,
	}
}

func (s *Service) publish(p Profile) {
	if s.publisher == nil || p.UserID == uuid.Nil {
		return
	}
	if err := s.publisher.Publish(p.UserID, ws.TypeProfileUpdated, p); err != nil {
		s.logger.Debug().Err(err).Str("user_id", p.UserID.String()).Msg("profile publish failed")
	}
}
