package broadcast

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// backplaneMessage wraps an event with its origin so instances skip their
// own relays.
type backplaneMessage struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBackplane mirrors published events over a Redis channel so several
// broadcaster instances share one logical audience. Delivery through the
// backplane stays best-effort: relay failures are logged, never surfaced.
type RedisBackplane struct {
	client  *redis.Client
	channel string
	origin  string
	local   *Broadcaster
	logger  *zap.Logger
}

// NewRedisBackplane builds a backplane over the given channel.
func NewRedisBackplane(client *redis.Client, channel string, local *Broadcaster, logger *zap.Logger) *RedisBackplane {
	return &RedisBackplane{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		logger:  logger,
	}
}

// Forward relays a locally published event to sibling instances.
func (bp *RedisBackplane) Forward(event Event) {
	payload, err := json.Marshal(backplaneMessage{Origin: bp.origin, Event: event})
	if err != nil {
		return
	}
	if err := bp.client.Publish(context.Background(), bp.channel, payload).Err(); err != nil {
		bp.logger.Warn("backplane relay failed", zap.Error(err))
	}
}

// Start consumes relayed events until ctx is cancelled, injecting events
// from other origins into the local registry.
func (bp *RedisBackplane) Start(ctx context.Context) {
	sub := bp.client.Subscribe(ctx, bp.channel)
	go func() {
		defer sub.Close() //nolint:errcheck
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var relayed backplaneMessage
				if err := json.Unmarshal([]byte(msg.Payload), &relayed); err != nil {
					bp.logger.Warn("malformed backplane message", zap.Error(err))
					continue
				}
				if relayed.Origin == bp.origin {
					continue
				}
				bp.local.DeliverLocal(relayed.Event)
			}
		}
	}()
}
