package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbmodels "github.com/ytdoc/youtube-doc-service-go/internal/db/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/docgen"
	"github.com/ytdoc/youtube-doc-service-go/internal/metrics"
	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/publisher"
	"github.com/ytdoc/youtube-doc-service-go/internal/queue"
	"github.com/ytdoc/youtube-doc-service-go/internal/storage"
	"github.com/ytdoc/youtube-doc-service-go/internal/validation"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// RefreshEnqueuer schedules a background document regeneration.
type RefreshEnqueuer interface {
	EnqueueDocumentRefresh(payload *queue.RefreshDocumentPayload, after time.Duration) error
}

// DocumentRecorder persists document records. Satisfied by
// repository.DocumentRepository; nil disables record keeping.
type DocumentRecorder interface {
	UpsertDocument(ctx context.Context, doc *dbmodels.Document) error
}

// DocumentService runs the document lifecycle: acquire, render, cache,
// publish. Optional collaborators (store, cache, records, events, refresh)
// may be nil; the service degrades to inline content delivery without them.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DocumentService struct {
	orchestrator   *Orchestrator
	store          storage.DocumentStore
	cache          storage.URLCache
	records        DocumentRecorder
	events         publisher.EventPublisher
	refresh        RefreshEnqueuer
	cacheTTL       time.Duration
	maxDisplaySize int
}

// Options carries the optional collaborators of a DocumentService.
type Options struct {
	Store          storage.DocumentStore
	Cache          storage.URLCache
	Records        DocumentRecorder
	Events         publisher.EventPublisher
	Refresh        RefreshEnqueuer
	CacheTTL       time.Duration
	MaxDisplaySize int
}

// NewDocumentService creates the document service.
func NewDocumentService(orchestrator *Orchestrator, opts Options) *DocumentService {
	cache := opts.Cache
	if cache == nil {
		cache = storage.NopCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.MaxDisplaySize <= 0 {
		opts.MaxDisplaySize = 300_000
	}

	return &DocumentService{
		orchestrator:   orchestrator,
		store:          opts.Store,
		cache:          cache,
		records:        opts.Records,
		events:         opts.Events,
		refresh:        opts.Refresh,
		cacheTTL:       opts.CacheTTL,
		maxDisplaySize: opts.MaxDisplaySize,
	}
}

// lookupCached returns the published URL for a video when one is already
// known, consulting the Redis cache first and the object store second.
func (s *DocumentService) lookupCached(ctx context.Context, videoID string) (string, bool) {
	if url, ok := s.cache.Get(ctx, videoID); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return url, true
	}

	if s.store != nil {
		url, ok, err := s.store.Exists(ctx, videoID)
		if err != nil {
			logger.Log.Warn("cache check against store failed",
				zap.String("videoId", videoID),
				zap.Error(err),
			)
		} else if ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			s.cache.Set(ctx, videoID, url)
			return url, true
		}
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return "", false
}

// publish uploads the document, then records it and emits the generated
// event. Record keeping and event emission are best effort; upload failure
// is the only error returned.
func (s *DocumentService) publish(ctx context.Context, query *models.VideoQuery, result *models.AcquisitionResult, content string) (string, error) {
	if s.store == nil {
		return "", &StorageError{Op: "upload", Cause: fmt.Errorf("no document store configured")}
	}

	start := time.Now()
	contentURL, err := s.store.Put(ctx, query.VideoID, content)
	metrics.StageDuration.WithLabelValues("s3_upload").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", &StorageError{Op: "upload", Cause: err}
	}

	s.cache.Set(ctx, query.VideoID, contentURL)
	s.record(ctx, query, result, contentURL, content)
	s.announce(ctx, query, result, contentURL, len(content))
	s.scheduleRefresh(query)

	return contentURL, nil
}

func (s *DocumentService) record(ctx context.Context, query *models.VideoQuery, result *models.AcquisitionResult, contentURL string, content string) {
	if s.records == nil {
		return
	}

	channel := ""
	if result.Metadata.Channel != nil {
		channel = *result.Metadata.Channel
	}

	doc := dbmodels.NewDocument(
		query.VideoID,
		result.Metadata.Title,
		channel,
		contentURL,
		len(content),
		docgen.EstimateTokens(content),
		result.Transcript != nil,
	)

	if err := s.records.UpsertDocument(ctx, doc); err != nil {
		logger.Log.Warn("failed to record document",
			zap.String("videoId", query.VideoID),
			zap.Error(err),
		)
	}
}

func (s *DocumentService) announce(ctx context.Context, query *models.VideoQuery, result *models.AcquisitionResult, contentURL string, size int) {
	if s.events == nil {
		return
	}

	event := &publisher.DocumentGeneratedEvent{
		VideoID:       query.VideoID,
		Title:         result.Metadata.Title,
		ContentURL:    contentURL,
		SizeBytes:     size,
		HasTranscript: result.Transcript != nil,
		GeneratedAt:   time.Now(),
	}

	if err := s.events.PublishDocumentGenerated(ctx, event); err != nil {
		logger.Log.Warn("failed to publish document event",
			zap.String("videoId", query.VideoID),
			zap.Error(err),
		)
	}
}

func (s *DocumentService) scheduleRefresh(query *models.VideoQuery) {
	if s.refresh == nil {
		return
	}

	payload, err := queue.NewRefreshDocumentTask(query.VideoID, query.MaxTranscriptLength, query.IncludeComments, query.Language)
	if err != nil {
		return
	}

	if err := s.refresh.EnqueueDocumentRefresh(payload, s.cacheTTL); err != nil {
		logger.Log.Warn("failed to schedule document refresh",
			zap.String("videoId", query.VideoID),
			zap.Error(err),
		)
	}
}

// cropForDisplay bounds inline content served directly to a page.
func (s *DocumentService) cropForDisplay(content string) string {
	if len(content) <= s.maxDisplaySize {
		return content
	}
	return fmt.Sprintf("(Content cropped to %dk characters)\n%s",
		s.maxDisplaySize/1000, content[:s.maxDisplaySize])
}

// ProcessQuery is the synchronous path behind the web form and the JSON
// API. It never fails once the URL validates; errors surface through
// ErrorMessage on the returned context.
func (s *DocumentService) ProcessQuery(ctx context.Context, rawURL string, maxTranscriptLength int, includeComments bool, language string) *models.QueryContext {
	qc := &models.QueryContext{
		VideoURL:                rawURL,
		DefaultTranscriptLength: maxTranscriptLength,
		IncludeComments:         includeComments,
		Language:                language,
	}

	query, err := validation.NewVideoQuery(rawURL, maxTranscriptLength, includeComments, language)
	if err != nil {
		qc.ErrorMessage = UserMessage(err)
		return qc
	}

	if url, ok := s.lookupCached(ctx, query.VideoID); ok {
		qc.ContentURL = url
		qc.Result = true
		metrics.DocumentsGenerated.WithLabelValues("cached").Inc()
		return qc
	}

	result, err := s.orchestrator.Acquire(ctx, query)
	if err != nil {
		qc.ErrorMessage = UserMessage(err)
		metrics.DocumentsGenerated.WithLabelValues("error").Inc()
		return qc
	}

	content := docgen.Generate(result, query.IncludeComments)

	if s.store == nil {
		qc.Content = s.cropForDisplay(content)
	} else if contentURL, err := s.publish(ctx, query, result, content); err != nil {
		// Upload failure falls back to inline content in this path.
		logger.Log.Warn("document upload failed, serving inline",
			zap.String("videoId", query.VideoID),
			zap.Error(err),
		)
		qc.Content = s.cropForDisplay(content)
	} else {
		qc.ContentURL = contentURL
	}

	qc.VideoInfo = result.Metadata
	qc.Result = true
	metrics.DocumentsGenerated.WithLabelValues("generated").Inc()

	logger.Log.Info("document generated",
		zap.String("videoId", query.VideoID),
		zap.String("title", result.Metadata.Title),
		zap.Int("size", len(content)),
		zap.Bool("hasTranscript", result.Transcript != nil),
	)

	return qc
}

// Regenerate rebuilds and republishes the document for a video. Used by
// the background refresh worker; implements queue.Regenerator.
func (s *DocumentService) Regenerate(ctx context.Context, videoID string, maxTranscriptLength int, includeComments bool, language string) error {
	query, err := validation.NewVideoQuery(models.WatchURL(videoID), maxTranscriptLength, includeComments, language)
	if err != nil {
		return err
	}

	result, err := s.orchestrator.Acquire(ctx, query)
	if err != nil {
		return err
	}

	content := docgen.Generate(result, query.IncludeComments)

	if _, err := s.publish(ctx, query, result, content); err != nil {
		return err
	}

	return nil
}
