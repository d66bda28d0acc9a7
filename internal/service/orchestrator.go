// Package service sequences the acquisition pipeline and the document
// lifecycle around it: validation, metadata, transcript, comments,
// rendering, caching, publishing.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/comments"
	"github.com/ytdoc/youtube-doc-service-go/internal/metrics"
	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/provider"
	"github.com/ytdoc/youtube-doc-service-go/internal/transcript"
	"github.com/ytdoc/youtube-doc-service-go/internal/worker"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// Orchestrator runs the acquisition stages for a validated query. Provider
// calls go through the bounded worker pool so a burst of requests cannot
// stall the server.
type Orchestrator struct {
	providers    *provider.Chain
	transcripts  transcript.Fetcher
	comments     comments.Fetcher
	pool         *worker.Pool
	stageTimeout time.Duration
}

// NewOrchestrator wires the acquisition stages together.
func NewOrchestrator(
	providers *provider.Chain,
	transcripts transcript.Fetcher,
	commentsFetcher comments.Fetcher,
	pool *worker.Pool,
	stageTimeout time.Duration,
) *Orchestrator {
	if stageTimeout <= 0 {
		stageTimeout = 30 * time.Second
	}

	return &Orchestrator{
		providers:    providers,
		transcripts:  transcripts,
		comments:     commentsFetcher,
		pool:         pool,
		stageTimeout: stageTimeout,
	}
}

// Acquire runs the full acquisition for a validated query. Metadata is
// always present in the result; transcript and comments may be absent. The
// only errors returned are scheduling failures (cancelled context, closed
// pool); stage failures degrade the result instead.
func (o *Orchestrator) Acquire(ctx context.Context, query *models.VideoQuery) (*models.AcquisitionResult, error) {
	result := &models.AcquisitionResult{}

	err := o.pool.Submit(ctx, func(ctx context.Context) error {
		result.Metadata = o.FetchMetadata(ctx, query)

		if text, ok := o.FetchTranscript(ctx, query); ok {
			result.Transcript = &text
		}

		if query.IncludeComments {
			if list, ok := o.FetchComments(ctx, query); ok {
				result.Comments = list
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FetchMetadata runs the provider chain for one query. Never fails; the
// chain bottoms out at the placeholder record.
func (o *Orchestrator) FetchMetadata(ctx context.Context, query *models.VideoQuery) *models.VideoMetadata {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	meta := o.providers.Fetch(ctx, query.VideoID, query.URL)
	metrics.StageDuration.WithLabelValues("video_metadata").Observe(time.Since(start).Seconds())

	return meta
}

// FetchTranscript runs the transcript fallback ladder. Absence is reported
// through the boolean, never through an error.
func (o *Orchestrator) FetchTranscript(ctx context.Context, query *models.VideoQuery) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	text, ok := o.transcripts.Fetch(ctx, query.VideoID, query.Language, query.MaxTranscriptLength)
	metrics.StageDuration.WithLabelValues("transcript_processing").Observe(time.Since(start).Seconds())

	if ok {
		metrics.TranscriptOutcomes.WithLabelValues("fetched").Inc()
	} else {
		metrics.TranscriptOutcomes.WithLabelValues("skipped").Inc()
		logger.Log.Info("no transcript obtained",
			zap.String("videoId", query.VideoID),
			zap.String("language", query.Language),
		)
	}

	return text, ok
}

// FetchComments retrieves comments when the query opted in. Absence is a
// valid result.
func (o *Orchestrator) FetchComments(ctx context.Context, query *models.VideoQuery) ([]string, bool) {
	if o.comments == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	return o.comments.Fetch(ctx, query.VideoID, comments.DefaultMaxComments)
}
