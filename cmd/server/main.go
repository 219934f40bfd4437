package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/taskflow-hq/taskflow-api/internal/config"
	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/handlers"
	"github.com/taskflow-hq/taskflow-api/internal/middleware"
	"github.com/taskflow-hq/taskflow-api/internal/services"
	"github.com/taskflow-hq/taskflow-api/internal/storage"
)

func main() {
	// Load .env if present, then configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Open the persistence bridge and rehydrate the entity store
	bridge, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	state, err := bridge.LoadState()
	if err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}
	log.Printf("Rehydrated %d task(s) and %d user(s)", len(state.Tasks), len(state.Users))

	// Services
	board := services.NewBoardService(state, bridge)
	authService := services.NewAuthService(board, bridge)
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	// Router with cookie sessions
	r := gin.Default()
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(board, aiService)
	boardHandler := handlers.NewBoardHandler(board, aiService)
	userHandler := handlers.NewUserHandler(board)
	chatHandler := handlers.NewChatHandler(board, aiService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TaskFlow API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/token", authHandler.ExchangeToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(board), authHandler.Me)
		}

		// Everything else requires an authenticated, activated user
		authed := api.Group("")
		authed.Use(middleware.RequireAuth(board), middleware.RequireActive())
		{
			authed.GET("/board", boardHandler.Board)
			authed.GET("/stats", boardHandler.Stats)
			authed.GET("/insights", boardHandler.Insights)

			tasks := authed.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.POST("", taskHandler.CreateTask)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.PATCH("/:id", taskHandler.UpdateTask)
				tasks.DELETE("/:id", taskHandler.DeleteTask)
				tasks.POST("/:id/subtasks/suggest", taskHandler.SuggestSubtasks)
			}

			users := authed.Group("/users")
			{
				users.GET("", userHandler.ListUsers)
				users.GET("/:id/workload", userHandler.Workload)
				users.PATCH("/:id", userHandler.UpdateUser)

				// roster management and personnel chat are admin features
				users.POST("", middleware.RequireAdmin(), userHandler.RegisterStaff)
				users.POST("/:id/toggle-active", middleware.RequireAdmin(), userHandler.ToggleActive)
				users.DELETE("/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
				users.GET("/:id/chat", middleware.RequireAdmin(), chatHandler.Transcript)
				users.POST("/:id/chat", middleware.RequireAdmin(), chatHandler.Send)
			}
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
