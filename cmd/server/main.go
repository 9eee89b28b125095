package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/config"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/database"
	"github.com/thecodingmontana/zadaci-api/internal/handlers"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/outbox"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"github.com/thecodingmontana/zadaci-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	workspaceService := services.NewWorkspaceService(workspaceRepo)
	projectService := services.NewProjectService(projectRepo, workspaceRepo, cfg.SiteURL)
	taskService := services.NewTaskService(taskRepo, projectRepo, workspaceRepo, cfg.SiteURL)
	inviteService := services.NewInviteService(inviteRepo, workspaceRepo, userRepo, cfg.SiteURL)
	statsService := services.NewStatsService(statsRepo, projectRepo)

	// Outbox dispatcher
	interval, err := time.ParseDuration(cfg.OutboxInterval)
	if err != nil {
		log.Fatalf("Invalid outbox interval %q: %v", cfg.OutboxInterval, err)
	}
	mailer := outbox.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	dispatcher := outbox.NewDispatcher(outboxRepo, mailer, interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	teammateHandler := handlers.NewTeammateHandler(workspaceService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	inviteHandler := handlers.NewInviteHandler(inviteService, authService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Zadaci API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		}

		// Public invite routes, reached from invite emails
		invites := api.Group("/invites")
		{
			invites.GET("/:inviteCode", inviteHandler.GetInvite)
			invites.POST("/:inviteCode/accept", inviteHandler.AcceptInvite)
			invites.POST("/:inviteCode/decline", inviteHandler.DeclineInvite)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)

			// Invitees are not members yet, so withdrawing an invite only
			// needs a session
			workspaces.PATCH("/:workspaceId/invites/cancel", inviteHandler.WithdrawInvite)

			ws := workspaces.Group("/:workspaceId")
			ws.Use(middleware.RequireWorkspaceAccess())
			{
				ws.GET("", workspaceHandler.GetWorkspace)
				ws.PATCH("", middleware.RequireWorkspaceRole(models.RoleOwner), workspaceHandler.UpdateWorkspace)
				ws.DELETE("", middleware.RequireWorkspaceRole(models.RoleOwner), workspaceHandler.DeleteWorkspace)

				ws.GET("/teammates", teammateHandler.ListTeammates)
				ws.PATCH("/teammates/roles", middleware.RequireWorkspaceRole(models.RoleOwner), teammateHandler.ChangeRoles)
				ws.DELETE("/teammates", middleware.RequireWorkspaceRole(models.RoleOwner), teammateHandler.RemoveTeammates)

				ws.GET("/invites", inviteHandler.ListInvites)
				ws.POST("/invites", middleware.RequireWorkspaceRole(models.RoleOwner), inviteHandler.SendInvites)
				ws.POST("/invites/resend", middleware.RequireWorkspaceRole(models.RoleOwner), inviteHandler.ResendInvites)
				ws.DELETE("/invites", middleware.RequireWorkspaceRole(models.RoleOwner), inviteHandler.CancelInvites)

				ws.GET("/tasks", statsHandler.WorkspaceTasks)
				ws.GET("/due", statsHandler.Due)
				ws.GET("/stats/overall", statsHandler.Overall)
				ws.GET("/stats/productivity", statsHandler.Productivity)
				ws.GET("/stats/tasks", statsHandler.MemberTasks)

				projects := ws.Group("/projects")
				{
					projects.GET("", projectHandler.ListProjects)
					projects.POST("", middleware.RequireWorkspaceRole(models.RoleMember), projectHandler.CreateProject)
					projects.GET("/:projectId", projectHandler.GetProject)
					projects.GET("/:projectId/teammates", projectHandler.ListProjectTeammates)
					projects.PATCH("/:projectId", middleware.RequireWorkspaceRole(models.RoleMember), projectHandler.UpdateProject)
					projects.PATCH("/:projectId/status", middleware.RequireWorkspaceRole(models.RoleMember), projectHandler.UpdateProjectStatus)
					projects.DELETE("/:projectId", middleware.RequireWorkspaceRole(models.RoleMember), projectHandler.DeleteProject)

					tasks := projects.Group("/:projectId/tasks")
					{
						tasks.GET("", taskHandler.ListTasks)
						tasks.POST("", middleware.RequireWorkspaceRole(models.RoleMember), taskHandler.CreateTask)
						tasks.GET("/:taskId", taskHandler.GetTask)
						tasks.PATCH("/:taskId", middleware.RequireWorkspaceRole(models.RoleMember), taskHandler.UpdateTask)
						tasks.PATCH("/:taskId/status", middleware.RequireWorkspaceRole(models.RoleMember), taskHandler.UpdateTaskStatus)
						tasks.DELETE("/:taskId", middleware.RequireWorkspaceRole(models.RoleMember), taskHandler.DeleteTask)
					}
				}
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
