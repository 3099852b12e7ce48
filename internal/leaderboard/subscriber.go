package leaderboard

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

// Broadcaster listens for Redis Pub/Sub leaderboard updates and pushes the
// refreshed daily top to every connected client.
type Broadcaster struct {
	svc     *Service
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	top     int
	logger  zerolog.Logger
}

func NewBroadcaster(svc *Service, redis *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = "lb:updates"
	}
	return &Broadcaster{
		svc:     svc,
		redis:   redis,
		hub:     hub,
		channel: channel,
		top:     10,
		logger:  logger.With().Str("component", "leaderboard_broadcaster").Logger(),
	}
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil || b.svc == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(ctx context.Context, payload string) {
	var update Update
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode leaderboard update payload")
		return
	}

	top, err := b.svc.Top(ctx, WindowDaily, b.top)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to collect leaderboard update")
		return
	}

	msg, err := ws.NewMessage(ws.TypeLeaderboardUpdated, map[string]interface{}{
		"window": WindowDaily,
		"top":    top,
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal leaderboard WS payload")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Debug().Err(err).Msg("failed to broadcast leaderboard update")
	}
}
