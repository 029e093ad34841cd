package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewServerWithDeps_RequiresRepositories(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil)
	assert.Error(t, err)
	_, err = NewServerWithDeps(testConfig(), &bootstrap.Runtime{})
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		env := setupServer(t, nil)
		resp, raw := env.do(t, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), `"status":"up"`)
	})

	t.Run("ready without redis", func(t *testing.T) {
		env := setupServer(t, nil)
		resp, raw := env.do(t, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, raw)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "disabled", body["checks"].(map[string]any)["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		env := setupServer(t, rdb)
		mr.Close()

		resp, raw := env.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decode[map[string]any](t, raw)
		assert.Equal(t, "unhealthy", body["checks"].(map[string]any)["redis"])
	})

	t.Run("database down", func(t *testing.T) {
		env := setupServer(t, nil)
		sqlDB, err := env.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		resp, _ := env.do(t, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupServer(t, nil)
	_, token := env.createUser(t, "ada")
	env.createPost(t, token, "counted")

	resp, raw := env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "agora_posts_created_total")
}

func TestFeedRequiresUpgrade(t *testing.T) {
	env := setupServer(t, nil)
	resp, _ := env.do(t, http.MethodGet, "/api/ws", "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestWritesPublishFeedEvents(t *testing.T) {
	_, rdb := setupRedis(t)
	env := setupServer(t, rdb)
	_, token := env.createUser(t, "ada")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := rdb.Subscribe(ctx, notifications.PostsChannel)
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	post := env.createPost(t, token, "hello")
	env.do(t, http.MethodPut, "/api/posts/like/"+post.ID, token, nil)
	env.do(t, http.MethodPost, "/api/posts/comment/"+post.ID, token, fiber.Map{"text": "hi"})
	env.do(t, http.MethodDelete, "/api/posts/"+post.ID, token, nil)

	var types []string
	for len(types) < 4 {
		select {
		case msg := <-ch:
			var evt notifications.Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
			assert.Equal(t, post.ID, evt.PostID)
			types = append(types, evt.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %v", types)
		}
	}
	assert.Equal(t, []string{
		notifications.EventPostCreated,
		notifications.EventPostReactionUpdated,
		notifications.EventCommentCreated,
		notifications.EventPostDeleted,
	}, types)
}

func TestFeedWebsocketRelaysEvents(t *testing.T) {
	_, rdb := setupRedis(t)
	env := setupServer(t, rdb)
	_, token := env.createUser(t, "ada")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.srv.startWiring(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	defer func() { _ = env.srv.Shutdown(context.Background()) }()

	url := "ws://" + ln.Addr().String() + "/api/ws"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	require.Eventually(t, func() bool { return env.srv.hub.Count() == 1 },
		time.Second, 10*time.Millisecond)

	post := env.createPost(t, token, "live")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(msg), `"type":"post_created"`), string(msg))
	assert.Contains(t, string(msg), post.ID)
}

func TestFeedWebsocketClosedOnHubShutdown(t *testing.T) {
	_, rdb := setupRedis(t)
	env := setupServer(t, rdb)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	defer func() { _ = env.app.Shutdown() }()

	conn, resp, err := gorillaws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	require.Eventually(t, func() bool { return env.srv.hub.Count() == 1 },
		time.Second, 10*time.Millisecond)
	require.NoError(t, env.srv.hub.Shutdown(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, gorillaws.IsCloseError(err, gorillaws.CloseGoingAway), "got %v", err)
}
