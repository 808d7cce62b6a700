package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	eventsChannel  = "arcade:events"
	publishTimeout = 5 * time.Second
)

// bridgePayload is the message published to Redis for cross-instance broadcast.
type bridgePayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// Bridge fans events out across instances via Redis pub/sub. Producers call
// Publish; every instance's Run loop delivers incoming events to its local
// hub exactly once, including the publishing instance's own.
type Bridge struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
}

// NewBridge creates a Redis pub/sub event bridge for the given hub.
func NewBridge(client *redis.Client, hub *Hub, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{client: client, hub: hub, logger: logger}
}

// Publish sends an event to the shared Redis channel. Failures are logged;
// event delivery is best effort and never fails the producing operation.
func (b *Bridge) Publish(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("event payload marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	body, err := json.Marshal(bridgePayload{Event: event, Data: data, At: time.Now().Unix()})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, eventsChannel, body).Err(); err != nil {
		b.logger.Warn("event publish failed", zap.String("event", event), zap.Error(err))
	}
}

// Run subscribes to the shared channel and broadcasts incoming events to the
// local hub until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		b.logger.Error("event subscription failed", zap.Error(err))
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var p bridgePayload
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				continue
			}
			b.hub.Broadcast(p.Event, p.Data)
		}
	}
}
