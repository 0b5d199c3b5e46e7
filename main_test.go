package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/app"
	"inkwell/internal/config"
)

func TestServerStartupAndHealthCheck(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load()
	require.NoError(t, err)

	server, err := app.NewApp(cfg, app.NewLogger(cfg.LogLevel))
	require.NoError(t, err)
	defer server.Close()

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := server.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"status":"healthy"`)
	})

	t.Run("SeededPostsArePublic", func(t *testing.T) {
		resp, err := server.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=3", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"totalCount":6`)
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := server.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
