package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/config"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/database"
	"github.com/yukikurage/consultant-ledger/internal/handlers"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/middleware"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logging.Logger.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logging.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logging.Logger.Fatalf("Failed to run migrations: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Sessions live in Redis when it is configured, otherwise in the cookie
	store, err := newSessionStore(cfg)
	if err != nil {
		logging.Logger.Fatalf("Failed to create session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == "release",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	clientRepo := repository.NewClientRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	logRepo := repository.NewTimeLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize services
	var assistant services.Assistant
	if cfg.OpenAIAPIKey != "" {
		assistant = services.NewOpenAIAssistant(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	} else {
		logging.Logger.Warn("OPENAI_API_KEY is not set, subtask suggestions and invoice summaries are disabled")
	}

	taskService := services.NewTaskService(taskRepo, clientRepo, subtaskRepo, logRepo)
	clientService := services.NewClientService(clientRepo, taskService)
	subtaskService := services.NewSubtaskService(taskRepo, subtaskRepo, assistant)
	logService := services.NewTimeLogService(logRepo, taskRepo, subtaskRepo, clientRepo, assistant)
	profileService := services.NewProfileService(profileRepo)
	workspaceService := services.NewWorkspaceService(clientRepo, taskRepo, subtaskRepo, logRepo, profileRepo)
	dashboardService := services.NewDashboardService(workspaceService)

	// Initialize handlers
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	clientHandler := handlers.NewClientHandler(clientService)
	taskHandler := handlers.NewTaskHandler(taskService, subtaskService, logService)
	logHandler := handlers.NewTimeLogHandler(logService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Consultant Ledger API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/workspace", workspaceHandler.GetWorkspace)

		clients := api.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/overview", clientHandler.GetOverview)
			clients.GET("/:id/months", middleware.LoadClient(clientRepo), clientHandler.GetMonths)
			clients.DELETE("/:id", middleware.LoadClient(clientRepo), clientHandler.DeleteClient)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.LoadTask(taskRepo), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.LoadTask(taskRepo), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.LoadTask(taskRepo), taskHandler.DeleteTask)
			tasks.PUT("/:id/subtasks", middleware.LoadTask(taskRepo), taskHandler.SyncSubtasks)
			tasks.POST("/:id/subtasks/suggest", middleware.LoadTask(taskRepo), taskHandler.SuggestSubtasks)
			tasks.POST("/:id/invoice-summary", middleware.LoadTask(taskRepo), taskHandler.InvoiceSummary)
		}

		logs := api.Group("/logs")
		{
			logs.GET("", logHandler.ListTimeLogs)
			logs.POST("", logHandler.CreateTimeLog)
		}
		api.GET("/timesheet", logHandler.GetTimesheet)

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", dashboardHandler.GetDashboard)
			dashboard.POST("/prev", dashboardHandler.PreviousPeriod)
			dashboard.POST("/next", dashboardHandler.NextPeriod)
		}

		api.GET("/profile", profileHandler.GetProfile)
		api.PUT("/profile", profileHandler.UpdateProfile)
	}

	// Start server
	logging.Logger.Infof("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Logger.Fatalf("Failed to start server: %v", err)
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if addr := cfg.RedisAddr(); addr != "" {
		return redisStore.NewStore(10, "tcp", addr, "", "", []byte(cfg.SessionSecret))
	}
	return cookie.NewStore([]byte(cfg.SessionSecret)), nil
}
