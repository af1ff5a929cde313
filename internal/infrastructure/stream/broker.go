package stream

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Channel names shared by publishers and SSE subscribers.
func QueueChannel(gameID string) string        { return "events:queue:" + gameID }
func UserChatChannel(userID string) string     { return "events:chat:user:" + userID }
func ConversationChannel(convID string) string { return "events:chat:conv:" + convID }

// Broker fans events out over redis pub/sub. Payloads are opaque hints; a
// subscriber re-reads state on every delivery, so redelivery is harmless.
type Broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

func (b *Broker) Publish(ctx context.Context, channel, payload string) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

// Subscribe returns a channel of payloads and a cancel function. The channel
// is closed once ctx is done or cancel is called.
func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan string, func()) {
	sub := b.client.Subscribe(ctx, channel)
	out := make(chan string, 8)

	done := make(chan struct{})
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
					// Drop when the consumer lags; it re-reads state anyway.
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var once func()
	closed := false
	once = func() {
		if closed {
			return
		}
		closed = true
		close(done)
		_ = sub.Close()
	}
	return out, once
}
