package handlers

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-hq/taskflow-api/internal/models"
)

func identityToken(t *testing.T, payload string) string {
	t.Helper()
	return "header." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestExchangeToken_BootstrapsAdmin(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/token", map[string]string{
		"credential": identityToken(t, `{"sub":"admin-1","name":"Admin User","email":"admin@example.com","picture":"https://example.com/a.png"}`),
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	decodeBody(t, w, &user)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)

	// session cookie works against a protected route
	cookies := w.Result().Cookies()
	me := env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestExchangeToken_SecondUserIsPending(t *testing.T) {
	env := setupTestEnv(t)
	env.seedAdmin(t)

	w := env.request(t, http.MethodPost, "/api/auth/token", map[string]string{
		"credential": identityToken(t, `{"sub":"staff-1","name":"Staff","email":"staff@example.com"}`),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	decodeBody(t, w, &user)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.False(t, user.IsActive)

	// pending users can see who they are but not reach the board
	cookies := w.Result().Cookies()
	me := env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusOK, me.Code)

	board := env.request(t, http.MethodGet, "/api/board", nil, cookies)
	assert.Equal(t, http.StatusForbidden, board.Code)
}

func TestExchangeToken_MalformedToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/token", map[string]string{
		"credential": "not-a-token",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, env.board.Snapshot().Users)
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/tasks", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	_, cookies := env.seedAdmin(t)

	w := env.request(t, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// the cleared cookie no longer authenticates
	cleared := w.Result().Cookies()
	me := env.request(t, http.MethodGet, "/api/auth/me", nil, cleared)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}
