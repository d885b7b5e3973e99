package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterEnforcesPerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)
	assert.Equal(t, maxConnsPerUser, hub.Connections(5))

	_, err = hub.Register(6, nil)
	assert.NoError(t, err)

	_ = hub.Shutdown(context.Background())
	assert.Zero(t, hub.Connections(5))
}

func TestHub_BroadcastTargetsOneUser(t *testing.T) {
	hub := NewHub()
	a1, err := hub.Register(1, nil)
	require.NoError(t, err)
	a2, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Broadcast(1, "hello"))
	assert.Equal(t, "hello", string(<-a1.Send))
	assert.Equal(t, "hello", string(<-a2.Send))
	assert.Len(t, b.Send, 0)

	hub.UnregisterClient(a1)
	hub.UnregisterClient(a1)
	assert.Equal(t, 1, hub.Connections(1))
	_, open := <-a1.Send
	assert.False(t, open)

	assert.Zero(t, hub.Broadcast(99, "nobody"))
	_ = hub.Shutdown(context.Background())
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	_ = hub.Shutdown(context.Background())
}

func TestHub_StartWiringForwardsPublishedEvents(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := hub.Register(42, nil)
	require.NoError(t, err)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.Notify(context.Background(), 42, Event{Type: EventSubscribed, ActorID: 1}))

	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), EventSubscribed)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
	_ = hub.Shutdown(context.Background())
}
