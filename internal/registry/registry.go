package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gokatarajesh/patente-quiz/internal/persist"
	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

// Kind names one of the per-user question sets.
type Kind string

const (
	Bookmarks Kind = "bookmarks"
	Flags     Kind = "flags"
)

// Kinds lists every supported set.
var Kinds = []Kind{Bookmarks, Flags}

// ParseKind maps a URL segment to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Bookmarks, Flags:
		return Kind(s), true
	}
	return "", false
}

type markRepo interface {
	List(ctx context.Context, kind string, userID uuid.UUID) ([]string, error)
	Add(ctx context.Context, kind string, userID uuid.UUID, questionID string) error
	Remove(ctx context.Context, kind string, userID uuid.UUID, questionID string) error
}

// Registry holds one user's bookmark and flag sets. Toggles apply locally
// first and persist in the background.
type Registry struct {
	userID    uuid.UUID
	repo      markRepo
	persister *persist.Persister
	onChange  func(kind Kind, ids []string)

	mu   sync.Mutex
	sets map[Kind]map[string]struct{}
}

// Load reads both sets for userID. uuid.Nil yields an empty registry whose
// toggles are no-ops.
func Load(ctx context.Context, repo markRepo, persister *persist.Persister, userID uuid.UUID) (*Registry, error) {
	r := &Registry{
		userID:    userID,
		repo:      repo,
		persister: persister,
		sets:      make(map[Kind]map[string]struct{}, len(Kinds)),
	}
	for _, kind := range Kinds {
		r.sets[kind] = map[string]struct{}{}
	}
	if userID == uuid.Nil {
		return r, nil
	}
	for _, kind := range Kinds {
		ids, err := repo.List(ctx, string(kind), userID)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", kind, err)
		}
		for _, id := range ids {
			r.sets[kind][id] = struct{}{}
		}
	}
	return r, nil
}

// Toggle flips membership of qid and reports whether it is now present.
func (r *Registry) Toggle(kind Kind, qid string) bool {
	r.mu.Lock()
	set, ok := r.sets[kind]
	if !ok || r.userID == uuid.Nil || qid == "" {
		present := ok && contains(set, qid)
		r.mu.Unlock()
		return present
	}

	_, present := set[qid]
	if present {
		delete(set, qid)
	} else {
		set[qid] = struct{}{}
	}
	present = !present
	var seq uint64
	if r.persister != nil {
		seq = r.persister.NextSeq()
	}
	ids := sortedKeys(set)
	r.mu.Unlock()

	r.persist(kind, qid, present, seq)
	if r.onChange != nil {
		r.onChange(kind, ids)
	}
	return present
}

func (r *Registry) Contains(kind Kind, qid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return contains(r.sets[kind], qid)
}

// List returns the sorted ids in a set.
func (r *Registry) List(kind Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.sets[kind])
}

func (r *Registry) persist(kind Kind, qid string, present bool, seq uint64) {
	if r.persister == nil {
		return
	}
	userID := r.userID
	r.persister.Submit(persist.Task{
		Key:   userID.String() + ":" + string(kind) + ":" + qid,
		Field: string(kind),
		Seq:   seq,
		Run: func(ctx context.Context) error {
			if present {
				return r.repo.Add(ctx, string(kind), userID, qid)
			}
			return r.repo.Remove(ctx, string(kind), userID, qid)
		},
	})
}

func contains(set map[string]struct{}, qid string) bool {
	_, ok := set[qid]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Publisher pushes messages to a user's live connections.
type Publisher interface {
	Publish(userID uuid.UUID, msgType string, payload interface{}) error
}

// Service caches one Registry per user.
type Service struct {
	repo      markRepo
	persister *persist.Persister
	publisher Publisher
	logger    zerolog.Logger

	mu         sync.Mutex
	registries map[uuid.UUID]*Registry
	lastUsed   map[uuid.UUID]time.Time
	loads      singleflight.Group
}

func NewService(repo markRepo, persister *persist.Persister, publisher Publisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		persister:  persister,
		publisher:  publisher,
		logger:     logger.With().Str("component", "registry").Logger(),
		registries: make(map[uuid.UUID]*Registry),
		lastUsed:   make(map[uuid.UUID]time.Time),
	}
}

// Registry returns the cached registry for userID, loading it on first use.
func (s *Service) Registry(ctx context.Context, userID uuid.UUID) (*Registry, error) {
	if userID == uuid.Nil {
		return Load(ctx, s.repo, s.persister, uuid.Nil)
	}
	if r := s.cached(userID); r != nil {
		return r, nil
	}
	v, err, _ := s.loads.Do(userID.String(), func() (interface{}, error) {
		if r := s.cached(userID); r != nil {
			return r, nil
		}
		r, err := Load(ctx, s.repo, s.persister, userID)
		if err != nil {
			return nil, err
		}
		r.onChange = func(kind Kind, ids []string) { s.publish(userID, kind, ids) }
		s.mu.Lock()
		s.registries[userID] = r
		s.lastUsed[userID] = time.Now()
		s.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

func (s *Service) cached(userID uuid.UUID) *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registries[userID]
	if ok {
		s.lastUsed[userID] = time.Now()
	}
	return r
}

// Drop forgets the cached registry for userID.
func (s *Service) Drop(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.registries, userID)
	delete(s.lastUsed, userID)
	s.mu.Unlock()
}

// Sweep forgets registries not requested since cutoff and returns how many.
func (s *Service) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, at := range s.lastUsed {
		if at.Before(cutoff) {
			delete(s.registries, id)
			delete(s.lastUsed, id)
			n++
		}
	}
	return n
}

func (s *Service) publish(userID uuid.UUID, kind Kind, ids []string) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{"kind": kind, "question_ids": ids}
	if err := s.publisher.Publish(userID, ws.TypeRegistryUpdated, payload); err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID.String()).Msg("registry publish failed")
	}
}
