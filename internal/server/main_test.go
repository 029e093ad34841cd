package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/auth"
	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		Env:         "test",
		DBDriver:    config.DriverSQLite,
		SQLitePath:  ":memory:",
		JWTSecret:   "test-secret-that-is-long-enough-1234",
		JWTIssuer:   "agora-api",
		JWTAudience: "agora-client",
	}
}

type testEnv struct {
	srv    *Server
	app    *fiber.App
	db     *gorm.DB
	tokens *auth.TokenService
}

func setupServer(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	rt := bootstrap.GormRuntime(db)
	rt.Redis = rdb
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := testConfig()
	srv, err := NewServerWithDeps(cfg, rt)
	require.NoError(t, err)

	return &testEnv{
		srv:    srv,
		app:    srv.App(),
		db:     db,
		tokens: auth.NewTokenService(cfg, rdb),
	}
}

// createUser stores a user and returns it with a valid token for it.
func (e *testEnv) createUser(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	user := &models.User{
		ID:     models.NewID(),
		Name:   name,
		Email:  name + "@example.com",
		Avatar: "https://img.example/" + name + ".png",
		Date:   time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.tokens.Issue(user.ID, time.Hour)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (e *testEnv) createPost(t *testing.T, token, text string) *models.Post {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/posts", token, fiber.Map{"text": text})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	post := decode[models.Post](t, raw)
	return &post
}
