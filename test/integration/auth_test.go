//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/model"
)

func TestAuthLifecycle(t *testing.T) {
	srv := newServer(t)

	status, body := srv.call(t, http.MethodPost, "/api/v1/auth/register", "", registration("Alice@Example.com", "alice", "Secret123"))
	require.Equal(t, http.StatusOK, status)
	created := dataAs[model.PublicUser](t, body)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Nil(t, created.LastLogin)

	status, body = srv.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, status)
	pair := dataAs[model.TokenPair](t, body)

	stored, err := srv.users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)

	status, body = srv.call(t, http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, dataAs[model.PublicUser](t, body).ID)

	status, body = srv.call(t, http.MethodPost, "/api/v1/auth/change-password", pair.AccessToken, map[string]any{
		"current_password": "Secret123", "new_password": "Changed456", "new_password_confirm": "Changed456",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = srv.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = srv.call(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, dataAs[model.TokenPair](t, body).AccessToken)
}

func TestInactiveUserIsRejected(t *testing.T) {
	srv := newServer(t)

	status, body := srv.call(t, http.MethodPost, "/api/v1/auth/register", "", registration("bob@example.com", "bob", "Secret123"))
	require.Equal(t, http.StatusOK, status)
	bob := dataAs[model.PublicUser](t, body)

	status, body = srv.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "bob@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, status)
	pair := dataAs[model.TokenPair](t, body)

	inactive := false
	_, err := srv.users.Update(context.Background(), bob.ID, model.UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	status, _ = srv.call(t, http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "bob@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestConcurrentRegistrationYieldsOneAccount(t *testing.T) {
	srv := newServer(t)

	const attempts = 8
	statuses := make([]int, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(registration("race@example.com", "racer", "Secret123"))
			resp, err := http.Post(srv.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(raw))
			if err != nil {
				return
			}
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()

	ok := 0
	for _, status := range statuses {
		switch status {
		case http.StatusOK:
			ok++
		default:
			assert.Equal(t, http.StatusConflict, status)
		}
	}
	assert.Equal(t, 1, ok)

	count, err := srv.users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReadiness(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
