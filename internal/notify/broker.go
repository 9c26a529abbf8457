package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tracker/internal/dto"
	"tracker/internal/model"
)

const channelPrefix = "notifications:"

// RedisBroker publishes new notifications on a per-user pub/sub channel so
// every API instance can stream them to connected clients.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func (b *RedisBroker) Publish(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(dto.NewNotification(n))
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, Channel(n.UserID), payload).Err()
}

// Subscribe returns the raw JSON payloads published for userID until ctx is
// done or the returned close function is called.
func (b *RedisBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func() error, error) {
	sub := b.client.Subscribe(ctx, Channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, sub.Close, nil
}
