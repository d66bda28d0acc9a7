package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/docgen"
	"github.com/ytdoc/youtube-doc-service-go/internal/metrics"
	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/validation"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// streamBufferSize bounds the event channel so a slow client cannot make
// the pipeline goroutine block forever; the channel drains fast in
// practice since events are small.
const streamBufferSize = 16

// Stream runs the pipeline for one request and reports progress as a
// sequence of events. The channel is closed after exactly one terminal
// event (complete or error), or when ctx is cancelled.
func (s *DocumentService) Stream(ctx context.Context, rawURL string, maxTranscriptLength int, includeComments bool, language string) <-chan models.ProgressEvent {
	events := make(chan models.ProgressEvent, streamBufferSize)

	go func() {
		defer close(events)
		s.run(ctx, events, rawURL, maxTranscriptLength, includeComments, language)
	}()

	return events
}

// emit sends one event, giving up when the client is gone.
func emit(ctx context.Context, events chan<- models.ProgressEvent, event models.ProgressEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *DocumentService) run(ctx context.Context, events chan<- models.ProgressEvent, rawURL string, maxTranscriptLength int, includeComments bool, language string) {
	if !emit(ctx, events, models.ProgressEvent{
		Status:  models.StatusConnected,
		Message: "Stream connected",
	}) {
		return
	}

	query, err := validation.NewVideoQuery(rawURL, maxTranscriptLength, includeComments, language)
	if err != nil {
		emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusURLValidation,
			Message: "Validating YouTube URL",
		})
		emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusError,
			Message: "URL validation failed",
			Error:   UserMessage(err),
		})
		return
	}

	// A known document short-circuits everything: the stream is just
	// connected followed by the terminal complete.
	if url, ok := s.lookupCached(ctx, query.VideoID); ok {
		metrics.DocumentsGenerated.WithLabelValues("cached").Inc()
		emit(ctx, events, models.ProgressEvent{
			Status:     models.StatusComplete,
			Message:    "Documentation already generated",
			VideoID:    query.VideoID,
			ContentURL: url,
			Cached:     true,
		})
		return
	}

	steps := []models.ProgressEvent{
		{Status: models.StatusURLValidation, Message: "Validating YouTube URL"},
		{Status: models.StatusURLValidated, Message: "URL validated", VideoID: query.VideoID},
		{Status: models.StatusCacheCheck, Message: "Checking for existing documentation", VideoID: query.VideoID},
		{Status: models.StatusCacheMiss, Message: "No cached documentation found", VideoID: query.VideoID},
		{Status: models.StatusVideoMetadata, Message: "Fetching video metadata", VideoID: query.VideoID},
	}
	for _, step := range steps {
		if !emit(ctx, events, step) {
			return
		}
	}

	var (
		result  *models.AcquisitionResult
		content string
	)

	err = s.orchestrator.pool.Submit(ctx, func(ctx context.Context) error {
		result = &models.AcquisitionResult{}
		result.Metadata = s.orchestrator.FetchMetadata(ctx, query)

		if !emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusVideoMetadataDone,
			Message: "Video metadata fetched",
			VideoID: query.VideoID,
			Title:   result.Metadata.Title,
		}) {
			return ctx.Err()
		}

		if !emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusTranscript,
			Message: "Extracting transcript",
			VideoID: query.VideoID,
		}) {
			return ctx.Err()
		}

		if text, ok := s.orchestrator.FetchTranscript(ctx, query); ok {
			result.Transcript = &text
			if !emit(ctx, events, models.ProgressEvent{
				Status:  models.StatusTranscriptDone,
				Message: "Transcript extracted",
				VideoID: query.VideoID,
				Length:  len(text),
			}) {
				return ctx.Err()
			}
		} else {
			// The single non-fatal branch: continue without a transcript.
			if !emit(ctx, events, models.ProgressEvent{
				Status:  models.StatusTranscriptSkipped,
				Message: "Transcript unavailable, continuing without it",
				VideoID: query.VideoID,
			}) {
				return ctx.Err()
			}
		}

		if query.IncludeComments {
			if list, ok := s.orchestrator.FetchComments(ctx, query); ok {
				result.Comments = list
			}
		}

		if !emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusDocGeneration,
			Message: "Generating documentation",
			VideoID: query.VideoID,
		}) {
			return ctx.Err()
		}

		content = docgen.Generate(result, query.IncludeComments)

		if !emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusDocGenerated,
			Message: "Documentation generated",
			VideoID: query.VideoID,
			Size:    len(content),
		}) {
			return ctx.Err()
		}

		return nil
	})
	if err != nil {
		metrics.DocumentsGenerated.WithLabelValues("error").Inc()
		emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusError,
			Message: "Processing failed",
			VideoID: query.VideoID,
			Error:   UserMessage(err),
		})
		return
	}

	if s.store == nil {
		// No object store configured: deliver the document inline.
		metrics.DocumentsGenerated.WithLabelValues("generated").Inc()
		emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusComplete,
			Message: "Documentation ready",
			VideoID: query.VideoID,
			Title:   result.Metadata.Title,
			Size:    len(content),
			Content: s.cropForDisplay(content),
		})
		return
	}

	if !emit(ctx, events, models.ProgressEvent{
		Status:  models.StatusS3Upload,
		Message: "Uploading documentation",
		VideoID: query.VideoID,
	}) {
		return
	}

	contentURL, err := s.publish(ctx, query, result, content)
	if err != nil {
		metrics.DocumentsGenerated.WithLabelValues("error").Inc()
		logger.Log.Error("document upload failed",
			zap.String("videoId", query.VideoID),
			zap.Error(err),
		)
		emit(ctx, events, models.ProgressEvent{
			Status:  models.StatusError,
			Message: "Upload failed",
			VideoID: query.VideoID,
			Error:   UserMessage(err),
		})
		return
	}

	metrics.DocumentsGenerated.WithLabelValues("generated").Inc()
	emit(ctx, events, models.ProgressEvent{
		Status:     models.StatusComplete,
		Message:    "Documentation ready",
		VideoID:    query.VideoID,
		Title:      result.Metadata.Title,
		Size:       len(content),
		ContentURL: contentURL,
	})
}
