package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/subtitleops/captionlint/internal/analytics"
	"github.com/subtitleops/captionlint/internal/cache"
	"github.com/subtitleops/captionlint/internal/config"
	"github.com/subtitleops/captionlint/internal/database"
	"github.com/subtitleops/captionlint/internal/logging"
	"github.com/subtitleops/captionlint/internal/middleware"
	"github.com/subtitleops/captionlint/internal/queue"
	"github.com/subtitleops/captionlint/internal/scheduler"
	"github.com/subtitleops/captionlint/internal/storage"
	"github.com/subtitleops/captionlint/internal/tracing"
	"github.com/subtitleops/captionlint/internal/validator"
	"github.com/subtitleops/captionlint/internal/webhook"
)

type API struct {
	cfg       *config.Config
	repo      *database.Repository
	storage   *storage.Storage
	queue     *queue.Queue
	cache     *cache.Cache
	scheduler *scheduler.JobScheduler
	validator *validator.Service
	analytics *analytics.Service
	webhooks  *webhook.Service
	logger    *logging.Logger
}

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize JWT secret from config
	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	// Initialize storage
	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	// Initialize cache
	runCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer runCache.Close()

	// Initialize job scheduler
	sched := scheduler.NewScheduler(repo, q, 100)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	webhookService := webhook.NewService(repo)

	// Create API instance
	api := &API{
		cfg:       cfg,
		repo:      repo,
		storage:   stor,
		queue:     q,
		cache:     runCache,
		scheduler: sched,
		validator: validator.NewService(),
		analytics: analytics.NewService(repo),
		webhooks:  webhookService,
		logger:    logger,
	}

	// Setup router
	router := setupRouter(api)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(api.logger))

	rl := middleware.NewRateLimiter(api.cfg.Server.RateLimitRPS, api.cfg.Server.RateLimitBurst)

	// Health check and metrics
	router.GET("/health", api.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(rl))
	if api.cfg.Auth.JWTSecret != "" {
		v1.Use(middleware.OptionalAuth(api.repo))
	}
	{
		// Synchronous validation
		v1.POST("/validate", api.validateInline)

		// Validation runs
		v1.POST("/validations", api.createRun)
		v1.GET("/validations", api.listRuns)
		v1.GET("/validations/:id", api.getRun)
		v1.GET("/validations/:id/reports", api.getRunReports)
		v1.GET("/validations/:id/stats", api.getRunStats)

		// Reports
		v1.GET("/reports/:id", api.getReport)
		v1.GET("/reports/:id/corrected", api.getCorrectedDocument)

		// Aggregate stats
		v1.GET("/stats/languages", api.getLanguageStats)
	}

	return router
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.repo.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	if err := api.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
