package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(nil)
	require.NoError(t, err)
	b, err := hub.Register(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, hub.Count())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())

	_, ok := <-a.Send
	assert.False(t, ok, "send buffer is closed on unregister")
}

func TestHub_ConnectionLimit(t *testing.T) {
	hub := NewHub()
	hub.maxConns = 1

	_, err := hub.Register(nil)
	require.NoError(t, err)
	_, err = hub.Register(nil)
	assert.ErrorIs(t, err, ErrHubFull)
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	a, _ := hub.Register(nil)
	b, _ := hub.Register(nil)

	hub.BroadcastAll(`{"type":"post_created"}`)

	assert.Equal(t, `{"type":"post_created"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"post_created"}`, string(<-b.Send))
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(nil)
	require.NoError(t, err)

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	assert.Len(t, c.Send, sendBufferSize)
}

func TestClient_TrySendAfterCloseDoesNotPanic(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(nil)
	require.NoError(t, err)
	hub.UnregisterClient(c)

	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Count())

	_, ok := <-c.Send
	assert.False(t, ok)

	_, err = hub.Register(nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_StartWiringRelaysEvents(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(nil)
	require.NoError(t, err)

	require.NoError(t, rdb.Publish(ctx, PostsChannel, "not json").Err())
	require.NoError(t, n.PublishPostEvent(ctx, EventCommentCreated, "p1", nil))

	select {
	case msg := <-c.Send:
		assert.Contains(t, string(msg), `"type":"comment_created"`)
	case <-time.After(time.Second):
		t.Fatal("event was not relayed")
	}
	assert.Never(t, func() bool { return len(c.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
