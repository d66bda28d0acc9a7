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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/comments"
	"github.com/ytdoc/youtube-doc-service-go/internal/config"
	"github.com/ytdoc/youtube-doc-service-go/internal/db"
	"github.com/ytdoc/youtube-doc-service-go/internal/db/repository"
	"github.com/ytdoc/youtube-doc-service-go/internal/handler"
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

const httpClientTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	httpClient := provider.NewHTTPClient(cfg.Proxy, httpClientTimeout)

	var providers []provider.MetadataProvider
	if cfg.YouTube.APIKey != "" {
		dataAPI, err := provider.NewDataAPIProvider(ctx, cfg.YouTube.APIKey)
		if err != nil {
			logger.Log.Warn("YouTube Data API provider unavailable", zap.Error(err))
		} else {
			providers = append(providers, dataAPI)
			logger.Log.Info("YouTube Data API provider enabled")
		}
	} else {
		logger.Log.Info("YouTube API key not configured, relying on oEmbed metadata")
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

	opts := service.Options{
		CacheTTL:       cfg.Redis.CacheTTL,
		MaxDisplaySize: cfg.Pipeline.MaxDisplaySize,
	}

	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3Store(cfg.Storage)
		if err != nil {
			logger.Log.Error("failed to initialize object storage", zap.Error(err))
			os.Exit(1)
		}
		opts.Store = store
		logger.Log.Info("object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Log.Info("object storage not configured, documents are served inline")
	}

	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Log.Warn("invalid Redis URL, URL cache disabled", zap.Error(err))
		} else {
			redisClient := redis.NewClient(redisOpts)
			defer func() { _ = redisClient.Close() }()
			opts.Cache = storage.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
		}

		queueClient, err := queue.NewClient(cfg.Redis.URL)
		if err != nil {
			logger.Log.Warn("queue client unavailable, refresh scheduling disabled", zap.Error(err))
		} else {
			defer func() { _ = queueClient.Close() }()
			opts.Refresh = queueClient
		}
	}

	var documents repository.DocumentRepository
	if cfg.Database.Host != "" {
		dbPool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Log.Error("failed to initialize database", zap.Error(err))
			os.Exit(1)
		}
		defer dbPool.Close()

		documents = repository.NewDocumentRepository(dbPool)
		opts.Records = documents
		logger.Log.Info("document record store enabled")
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

	router := handler.SetupRouter(
		handler.NewVideoHandler(svc),
		handler.NewAPIHandler(svc, documents),
		"web/templates/*.tmpl",
	)

	// No WriteTimeout: the progress stream holds the response open.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Error("server error", zap.Error(err))
		os.Exit(1)
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			_ = server.Close()
		}

		if err := pool.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("worker pool did not drain", zap.Error(err))
		}

		logger.Log.Info("server stopped")
	}
}
