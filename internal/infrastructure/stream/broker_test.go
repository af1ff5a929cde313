package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
)

func setupBroker(t *testing.T) *stream.Broker {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return stream.NewBroker(client)
}

func TestPublishReachesSubscriber(t *testing.T) {
	ctx := context.Background()
	broker := setupBroker(t)

	events, cancel := broker.Subscribe(ctx, stream.QueueChannel("g1"))
	defer cancel()

	// go-redis confirms the subscription before Channel() delivers, but give
	// the reader goroutine a beat to start.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, broker.Publish(ctx, stream.QueueChannel("g1"), "join"))

	select {
	case payload := <-events:
		assert.Equal(t, "join", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	ctx := context.Background()
	broker := setupBroker(t)

	events, cancel := broker.Subscribe(ctx, stream.UserChatChannel("alice"))
	cancel()
	// Cancel twice to confirm idempotency.
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after cancel")
	}
}

func TestChannelNamesAreScoped(t *testing.T) {
	assert.Equal(t, "events:queue:g1", stream.QueueChannel("g1"))
	assert.Equal(t, "events:chat:user:alice", stream.UserChatChannel("alice"))
	assert.Equal(t, "events:chat:conv:c1", stream.ConversationChannel("c1"))
}
