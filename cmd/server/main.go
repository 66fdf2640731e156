package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/reviewgate/internal/handlers"
	"github.com/alimgiray/reviewgate/internal/middleware"
	"github.com/alimgiray/reviewgate/internal/repositories"
	"github.com/alimgiray/reviewgate/internal/services"
	"github.com/alimgiray/reviewgate/internal/workers"
	"github.com/alimgiray/reviewgate/pkg/config"
	"github.com/alimgiray/reviewgate/pkg/database"
	"github.com/alimgiray/reviewgate/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	pullRequestRepo := repositories.NewPullRequestRepository(database.DB)
	reviewerRepo := repositories.NewReviewerRepository(database.DB)
	settingRepo := repositories.NewRepositorySettingRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)

	pullRequestService := services.NewPullRequestService(pullRequestRepo, reviewerRepo)
	settingService := services.NewRepositorySettingService(settingRepo, cfg.Review.DefaultMinimum)
	jobService := services.NewJobService(jobRepo)

	githubService, err := services.NewGitHubService(cfg.GitHub.Token, cfg.GitHub.APIURL)
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}
	if cfg.GitHub.Token == "" {
		logger.Warnf("GITHUB_TOKEN is not set, commit statuses will be rejected by GitHub")
	}

	var options []services.ReconciliationOption
	if cfg.Review.RequireCollaborators {
		options = append(options, services.WithCollaboratorFilter(githubService))
	}
	if cfg.Review.AssignReviewers {
		options = append(options, services.WithReviewerAssignment(githubService))
	}

	reconciler := services.NewReconciliationService(
		githubService,
		pullRequestService,
		services.NewReviewPolicy(settingService),
		services.NewStatusReporter(githubService, cfg.Review.StatusContext, cfg.Review.TargetURL),
		options...,
	)

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(jobRepo, reconciler, workers.ManagerConfig{
		PullRequestWorkers:  cfg.Workers.PullRequest,
		IssueCommentWorkers: cfg.Workers.IssueComment,
		PollInterval:        cfg.Workers.PollInterval,
	})

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	setupRoutes(router, cfg, jobService, settingService)

	// Start workers
	if err := workerManager.StartAll(context.Background()); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := workerManager.StopAll(); err != nil {
		logger.Errorf("Workers stopped with error: %v", err)
	}

	logger.Infof("Server stopped")
}

func setupRoutes(router *gin.Engine, cfg *config.Config, jobService *services.JobService, settingService *services.RepositorySettingService) {
	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(jobService)
	settingHandler := handlers.NewRepositorySettingHandler(settingService)
	healthHandler := handlers.NewHealthHandler(jobService)
	notFoundHandler := handlers.NewNotFoundHandler()

	// Webhook routes
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/pull_request", webhookHandler.PullRequest)
		webhooks.POST("/issue_comment", webhookHandler.IssueComment)
		webhooks.POST("/github", webhookHandler.GitHub)
	}

	// Admin routes are only mounted when a token is configured
	if cfg.Admin.Token != "" {
		api := router.Group("/api/repositories/:owner/:repo")
		api.Use(middleware.AdminTokenRequired(cfg.Admin.Token))
		{
			api.GET("/settings", settingHandler.GetSettings)
			api.PUT("/settings/:key", settingHandler.UpdateSetting)
			api.DELETE("/settings/:key", settingHandler.DeleteSetting)
		}
	} else {
		logger.Infof("ADMIN_TOKEN is not set, settings API disabled")
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/metrics", healthHandler.Metrics())

	router.NoRoute(notFoundHandler.NotFound)
}
