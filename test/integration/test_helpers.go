//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"go-auth-api/internal/config"
	"go-auth-api/internal/database"
	"go-auth-api/internal/handler"
	"go-auth-api/internal/llm"
	"go-auth-api/internal/metrics"
	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/repository"
	"go-auth-api/internal/router"
	"go-auth-api/internal/security"
	"go-auth-api/internal/service"
)

const testSecret = "integration-secret-0123456789abcdef"

// startPostgres runs a throwaway database with the schema applied.
func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("auth"),
		postgres.WithUsername("auth"),
		postgres.WithPassword("auth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := database.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := database.New(ctx, connStr, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

type server struct {
	*httptest.Server
	users *repository.UserRepository
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := startPostgres(t)

	cfg := &config.Config{
		Version:        "test",
		Environment:    config.EnvTesting,
		APIPrefix:      "/api/v1",
		RequestTimeout: 10 * time.Second,
		CORSOrigins:    []string{"*"},
	}

	codec, err := security.NewTokenCodec(security.TokenConfig{Secret: testSecret, Algorithm: "HS256"})
	require.NoError(t, err)

	users := repository.NewUserRepository(db.Pool)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	m := metrics.New()
	providers := llm.NewProviders(llm.Config{})

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(users, hasher, codec, nil), m),
		Users:  handler.NewUserHandler(service.NewUserService(users, hasher)),
		Health: handler.NewHealthHandler(cfg.Version, cfg.Environment, cfg.APIPrefix, db),
		LLM:    handler.NewLLMHandler(service.NewChatService(providers, m), service.NewBlogService(providers, m)),
		Docs:   handler.NewDocsHandler("/openapi.yaml"),
	}

	ts := httptest.NewServer(router.New(cfg, middleware.NewAuthGuard(codec, users), m, h))
	t.Cleanup(ts.Close)

	return &server{Server: ts, users: users}
}

func (s *server) call(t *testing.T, method string, path string, token string, body any) (int, model.APIResponse) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func dataAs[T any](t *testing.T, envelope model.APIResponse) T {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func registration(email string, username string, password string) map[string]any {
	return map[string]any{
		"email":            email,
		"username":         username,
		"password":         password,
		"password_confirm": password,
	}
}
