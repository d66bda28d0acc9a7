package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/comments"
	"github.com/ytdoc/youtube-doc-service-go/internal/config"
	"github.com/ytdoc/youtube-doc-service-go/internal/db"
	"github.com/ytdoc/youtube-doc-service-go/internal/db/repository"
	"github.com/ytdoc/youtube-doc-service-go/internal/metrics"
	"github.com/ytdoc/youtube-doc-service-go/internal/provider"
	"github.com/ytdoc/youtube-doc-service-go/internal/publisher"
	"github.com/ytdoc/youtube-doc-service-go/internal/queue"
	"github.com/ytdoc/youtube-doc-service-go/internal/service"
	"github.com/ytdoc/youtube-doc-service-go/internal/storage"
	"github.com/ytdoc/youtube-doc-service-go/internal/transcript"
	"github.com/ytdoc/youtube-doc-service-go/internal/worker"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

const (
	httpClientTimeout  = 15 * time.Second
	defaultConcurrency = 4
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Redis.URL == "" {
		logger.Log.Error("YTDOC_REDIS_URL is required for the refresh worker")
		os.Exit(1)
	}
	if cfg.Storage.Bucket == "" {
		logger.Log.Error("object storage must be configured for the refresh worker")
		os.Exit(1)
	}

	ctx := context.Background()

	httpClient := provider.NewHTTPClient(cfg.Proxy, httpClientTimeout)

	var providers []provider.MetadataProvider
	if cfg.YouTube.APIKey != "" {
		dataAPI, err := provider.NewDataAPIProvider(ctx, cfg.YouTube.APIKey)
		if err != nil {
			logger.Log.Warn("YouTube Data API provider unavailable", zap.Error(err))
		} else {
			providers = append(providers, dataAPI)
		}
	}
	providers = append(providers, provider.NewOEmbedProvider(httpClient))

	chain := provider.NewChain(providers, provider.WithFailureHook(func(name string) {
		metrics.ProviderFallbacks.WithLabelValues(name).Inc()
	}))

	var commentsFetcher comments.Fetcher = comments.Disabled{}
	if cfg.YouTube.APIKey != "" {
		apiFetcher, err := comments.NewAPIFetcher(ctx, cfg.YouTube.APIKey)
		if err != nil {
			logger.Log.Warn("comments fetcher unavailable", zap.Error(err))
		} else {
			commentsFetcher = apiFetcher
		}
	}

	pool := worker.NewPool(cfg.Pipeline.WorkerPoolSize)
	orchestrator := service.NewOrchestrator(
		chain,
		transcript.NewHTTPFetcher(httpClient),
		commentsFetcher,
		pool,
		cfg.Pipeline.StageTimeout,
	)

	store, err := storage.NewS3Store(cfg.Storage)
	if err != nil {
		logger.Log.Error("failed to initialize object storage", zap.Error(err))
		os.Exit(1)
	}

	opts := service.Options{
		Store:          store,
		CacheTTL:       cfg.Redis.CacheTTL,
		MaxDisplaySize: cfg.Pipeline.MaxDisplaySize,
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Log.Error("invalid Redis URL", zap.Error(err))
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()
	opts.Cache = storage.NewRedisCache(redisClient, cfg.Redis.CacheTTL)

	// Re-enqueue the next refresh cycle after each regeneration.
	queueClient, err := queue.NewClient(cfg.Redis.URL)
	if err != nil {
		logger.Log.Warn("queue client unavailable, documents will not be rescheduled", zap.Error(err))
	} else {
		defer func() { _ = queueClient.Close() }()
		opts.Refresh = queueClient
	}

	if cfg.Database.Host != "" {
		dbPool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Log.Error("failed to initialize database", zap.Error(err))
			os.Exit(1)
		}
		defer dbPool.Close()
		opts.Records = repository.NewDocumentRepository(dbPool)
	}

	if cfg.RabbitMQ.Host != "" {
		events, err := publisher.NewMessagePublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("event publisher unavailable", zap.Error(err))
		} else {
			defer func() { _ = events.Close() }()
			opts.Events = events
		}
	}

	svc := service.NewDocumentService(orchestrator, opts)

	server, err := queue.NewServer(cfg.Redis.URL, defaultConcurrency, queue.NewRefreshHandler(svc))
	if err != nil {
		logger.Log.Error("failed to create task server", zap.Error(err))
		os.Exit(1)
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("refresh worker starting", zap.Int("concurrency", defaultConcurrency))
		serverErrors <- server.Run()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Error("task server error", zap.Error(err))
		os.Exit(1)
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))
		server.Shutdown()

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(drainCtx); err != nil {
			logger.Log.Warn("worker pool did not drain", zap.Error(err))
		}

		logger.Log.Info("refresh worker stopped")
	}
}
