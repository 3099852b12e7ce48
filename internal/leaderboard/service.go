package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Supported leaderboard windows.
const (
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowDaily, WindowWeekly, WindowAllTime}

var ErrUnknownWindow = errors.New("unknown leaderboard window")

// Entry represents a leaderboard record sent to clients.
type Entry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	XP          int       `json:"xp"`
}

// Update is broadcast after XP lands on the boards.
type Update struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int       `json:"amount"`
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	RedisKeyPrefix string
	// Location decides where a day and a week begin.
	Location *time.Location
	Now      func() time.Time
}

// Service keeps XP leaderboards in Redis sorted sets, one per window
// period, and announces changes over Pub/Sub.
type Service struct {
	redis         *redis.Client
	logger        zerolog.Logger
	topN          int
	pubsubChannel string
	prefix        string
	loc           *time.Location
	now           func() time.Time
}

func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "lb:updates"
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb:xp"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		redis:         redis,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		topN:          topN,
		pubsubChannel: channel,
		prefix:        prefix,
		loc:           loc,
		now:           now,
	}
}

// RecordXP adds amount to the user's score in every window.
func (s *Service) RecordXP(ctx context.Context, userID uuid.UUID, displayName string, amount int) error {
	if userID == uuid.Nil || amount <= 0 {
		return nil
	}
	now := s.now().In(s.loc)
	member := userID.String()

	pipe := s.redis.TxPipeline()
	for _, window := range defaultWindows {
		key := s.boardKey(window, now)
		pipe.ZIncrBy(ctx, key, float64(amount), member)
		if ttl := retention(window); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
	}
	if displayName != "" {
		pipe.HSet(ctx, s.namesKey(), member, displayName)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record xp: %w", err)
	}

	s.publishUpdate(ctx, Update{UserID: userID, Amount: amount})
	return nil
}

// Top retrieves the top entries of the current period of window.
func (s *Service) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	if !isValidWindow(window) {
		return nil, ErrUnknownWindow
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	key := s.boardKey(window, s.now().In(s.loc))
	results, err := s.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if len(results) == 0 {
		return []Entry{}, nil
	}

	members := make([]string, len(results))
	for i, z := range results {
		members[i], _ = z.Member.(string)
	}
	names, err := s.redis.HMGet(ctx, s.namesKey(), members...).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read leaderboard names")
		names = make([]interface{}, len(members))
	}

	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		id, err := uuid.Parse(members[i])
		if err != nil {
			s.logger.Warn().Str("member", members[i]).Msg("skipping malformed leaderboard member")
			continue
		}
		name, _ := names[i].(string)
		entries = append(entries, Entry{
			Rank:        len(entries) + 1,
			UserID:      id,
			DisplayName: name,
			XP:          int(z.Score),
		})
	}
	return entries, nil
}

// Rank returns the user's 1-based rank and XP in window; rank 0 means unranked.
func (s *Service) Rank(ctx context.Context, window string, userID uuid.UUID) (int, int, error) {
	if !isValidWindow(window) {
		return 0, 0, ErrUnknownWindow
	}
	key := s.boardKey(window, s.now().In(s.loc))
	rank, err := s.redis.ZRevRank(ctx, key, userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("fetch rank: %w", err)
	}
	score, err := s.redis.ZScore(ctx, key, userID.String()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("fetch score: %w", err)
	}
	return int(rank) + 1, int(score), nil
}

func (s *Service) publishUpdate(ctx context.Context, update Update) {
	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return
	}
	if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
	}
}

func (s *Service) boardKey(window string, now time.Time) string {
	switch window {
	case WindowDaily:
		return fmt.Sprintf("%s:%s:%s", s.prefix, window, now.Format("2006-01-02"))
	case WindowWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s:%s:%d-W%02d", s.prefix, window, year, week)
	}
	return fmt.Sprintf("%s:%s", s.prefix, window)
}

func (s *Service) namesKey() string {
	return s.prefix + ":names"
}

// retention keeps a closed period around long enough to be read back.
func retention(window string) time.Duration {
	switch window {
	case WindowDaily:
		return 48 * time.Hour
	case WindowWeekly:
		return 15 * 24 * time.Hour
	}
	return 0
}

func isValidWindow(window string) bool {
	switch window {
	case WindowDaily, WindowWeekly, WindowAllTime:
		return true
	default:
		return false
	}
}
