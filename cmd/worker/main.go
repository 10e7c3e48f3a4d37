package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subtitleops/captionlint/internal/cache"
	"github.com/subtitleops/captionlint/internal/config"
	"github.com/subtitleops/captionlint/internal/database"
	"github.com/subtitleops/captionlint/internal/logging"
	"github.com/subtitleops/captionlint/internal/metrics"
	"github.com/subtitleops/captionlint/internal/queue"
	"github.com/subtitleops/captionlint/internal/storage"
	"github.com/subtitleops/captionlint/internal/tracing"
	"github.com/subtitleops/captionlint/internal/validator"
	"github.com/subtitleops/captionlint/internal/webhook"
	"github.com/subtitleops/captionlint/pkg/models"
)

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

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-worker", cfg.Tracing.JaegerEndpoint)
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

	// Initialize cache
	reportCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer reportCache.Close()

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	// Initialize webhook service
	webhookService := webhook.NewService(repo)

	processor := validator.NewProcessor(cfg.Validator, repo, stor, reportCache, webhookService, logger)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	// Retry failed webhook deliveries in the background
	go webhookService.RetryWorker(ctx)

	// Keep the queue depth gauge current
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if depth, err := q.GetQueueDepth(); err == nil {
					metrics.JobsQueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Job handler
	jobHandler := func(job *models.ValidationJob) error {
		logger.Infof("Processing job %s for document %s", job.ID, job.DocumentID)

		if err := processor.ProcessJob(ctx, job); err != nil {
			logger.WithError(err).Errorf("Failed to process job %s", job.ID)
			return err
		}

		logger.Infof("Successfully processed job %s", job.ID)
		return nil
	}

	// Start consuming jobs
	logger.Info("Worker started, waiting for jobs...")
	if err := q.ConsumeJobs(ctx, jobHandler); err != nil {
		logger.Fatalf("Failed to consume jobs: %v", err)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("Worker stopped")
}
