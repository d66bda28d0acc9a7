// Package provider implements the metadata provider chain. Providers are
// tried in a fixed priority order; the first success wins and the chain
// terminates in a synthetic placeholder that never fails.
package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// UnavailableError reports that a provider failed for this call (network,
// quota, blocked region, format change). The chain recovers by falling
// through to the next provider.
type UnavailableError struct {
	Provider string
	Cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// MetadataProvider fetches metadata for a single video. Implementations
// return an *UnavailableError on any failure so the chain can fall through.
type MetadataProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Fetch retrieves metadata for the video. The returned metadata is used
	// in full; results are never merged across providers.
	Fetch(ctx context.Context, videoID, url string) (*models.VideoMetadata, error)
}

// Chain tries an ordered list of providers and falls back to the synthetic
// placeholder when all of them fail. Fetch never returns an error.
type Chain struct {
	providers []MetadataProvider
	onFailure func(provider string)
}

// ChainOption customizes Chain creation.
type ChainOption func(*Chain)

// WithFailureHook registers a callback invoked once per failed provider
// attempt, used for metrics.
func WithFailureHook(hook func(provider string)) ChainOption {
	return func(c *Chain) {
		c.onFailure = hook
	}
}

// NewChain creates a provider chain. The providers are attempted in the
// given order; a nil or empty list degrades to placeholder-only.
func NewChain(providers []MetadataProvider, options ...ChainOption) *Chain {
	c := &Chain{providers: providers}
	for _, option := range options {
		option(c)
	}
	return c
}

// Fetch returns metadata from the first provider that succeeds, or the
// deterministic placeholder record when every provider fails.
func (c *Chain) Fetch(ctx context.Context, videoID, url string) *models.VideoMetadata {
	for _, p := range c.providers {
		meta, err := p.Fetch(ctx, videoID, url)
		if err == nil {
			logger.Log.Debug("metadata provider succeeded",
				zap.String("provider", p.Name()),
				zap.String("videoId", videoID),
			)
			return meta
		}

		logger.Log.Warn("metadata provider failed, falling through",
			zap.String("provider", p.Name()),
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		if c.onFailure != nil {
			c.onFailure(p.Name())
		}
	}

	return Placeholder(videoID, url)
}

// Placeholder builds the guaranteed-success synthetic metadata record used
// when all real providers fail.
func Placeholder(videoID, url string) *models.VideoMetadata {
	description := "Description not available"
	channel := "Unknown Channel"
	thumbnail := models.DefaultThumbnailURL(videoID)

	return &models.VideoMetadata{
		Title:        fmt.Sprintf("Video %s", videoID),
		Description:  &description,
		Duration:     0,
		Channel:      &channel,
		URL:          url,
		VideoID:      videoID,
		ThumbnailURL: &thumbnail,
	}
}
