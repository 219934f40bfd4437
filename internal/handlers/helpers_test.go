package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/middleware"
	"github.com/taskflow-hq/taskflow-api/internal/services"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// testEnv wires the real router surface against an in-memory board with no
// persistence and no AI client.
type testEnv struct {
	router *gin.Engine
	board  *services.BoardService
	chat   *ChatHandler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	board := services.NewBoardService(store.State{}, nil)
	authService := services.NewAuthService(board, nil)

	authHandler := NewAuthHandler(authService)
	taskHandler := NewTaskHandler(board, nil)
	boardHandler := NewBoardHandler(board, nil)
	userHandler := NewUserHandler(board)
	chatHandler := NewChatHandler(board, nil)

	r := gin.New()
	sessionStore := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	// sets the session cookie directly so tests can act as any user
	r.POST("/test/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, c.Param("id"))
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	api := r.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/token", authHandler.ExchangeToken)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.RequireAuth(board), authHandler.Me)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(board), middleware.RequireActive())
	authed.GET("/board", boardHandler.Board)
	authed.GET("/stats", boardHandler.Stats)
	authed.GET("/insights", boardHandler.Insights)
	authed.GET("/tasks", taskHandler.ListTasks)
	authed.POST("/tasks", taskHandler.CreateTask)
	authed.GET("/tasks/:id", taskHandler.GetTask)
	authed.PATCH("/tasks/:id", taskHandler.UpdateTask)
	authed.DELETE("/tasks/:id", taskHandler.DeleteTask)
	authed.POST("/tasks/:id/subtasks/suggest", taskHandler.SuggestSubtasks)
	authed.GET("/users", userHandler.ListUsers)
	authed.GET("/users/:id/workload", userHandler.Workload)
	authed.PATCH("/users/:id", userHandler.UpdateUser)
	authed.POST("/users", middleware.RequireAdmin(), userHandler.RegisterStaff)
	authed.POST("/users/:id/toggle-active", middleware.RequireAdmin(), userHandler.ToggleActive)
	authed.DELETE("/users/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
	authed.GET("/users/:id/chat", middleware.RequireAdmin(), chatHandler.Transcript)
	authed.POST("/users/:id/chat", middleware.RequireAdmin(), chatHandler.Send)

	return &testEnv{router: r, board: board, chat: chatHandler}
}

// seedAdmin creates the bootstrap admin and returns their session cookies.
func (env *testEnv) seedAdmin(t *testing.T) (string, []*http.Cookie) {
	t.Helper()
	admin := env.board.Authenticate(store.IdentityProfile{
		Sub:   "admin-1",
		Name:  "Admin User",
		Email: "admin@example.com",
	})
	return admin.ID, env.login(t, admin.ID)
}

// seedActiveStaff creates an approved staff member and returns their
// session cookies.
func (env *testEnv) seedActiveStaff(t *testing.T, name, email string) (string, []*http.Cookie) {
	t.Helper()
	staff := env.board.RegisterStaff(name, email)
	return staff.ID, env.login(t, staff.ID)
}

func (env *testEnv) login(t *testing.T, userID string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test/login/"+userID, nil)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

func (env *testEnv) request(t *testing.T, method, url string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
