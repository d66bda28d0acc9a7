// Package comments retrieves top-level video comments through the YouTube
// Data API v3. Without an API credential the fetcher reports absence; it
// never blocks metadata or transcript acquisition.
package comments

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// DefaultMaxComments bounds the number of comments rendered per document.
const DefaultMaxComments = 20

// Fetcher retrieves an ordered, bounded list of comment texts.
type Fetcher interface {
	// Fetch returns up to maxComments comment texts, or (nil, false) when
	// comments are unavailable for this video or no credential is
	// configured.
	Fetch(ctx context.Context, videoID string, maxComments int) ([]string, bool)
}

// APIFetcher is backed by the commentThreads endpoint.
type APIFetcher struct {
	service *youtube.Service
}

// NewAPIFetcher creates a comments fetcher. It fails when the key is empty
// or the service cannot be constructed; callers treat a nil fetcher as
// "comments disabled".
func NewAPIFetcher(ctx context.Context, apiKey string) (*APIFetcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &APIFetcher{service: service}, nil
}

// Fetch retrieves one page of top-level comments ordered by relevance and
// truncates to maxComments. Failures degrade to absence.
func (f *APIFetcher) Fetch(ctx context.Context, videoID string, maxComments int) ([]string, bool) {
	if maxComments <= 0 || maxComments > DefaultMaxComments {
		maxComments = DefaultMaxComments
	}

	call := f.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		Order("relevance").
		TextFormat("plainText").
		MaxResults(int64(maxComments)).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		// Comments may be disabled for the video, or quota exhausted.
		logger.Log.Warn("comments fetch failed",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		return nil, false
	}

	texts := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		texts = append(texts, item.Snippet.TopLevelComment.Snippet.TextDisplay)
		if len(texts) == maxComments {
			break
		}
	}

	if len(texts) == 0 {
		return nil, false
	}

	return texts, true
}

// Disabled is the fetcher used when no API credential is configured.
type Disabled struct{}

func (Disabled) Fetch(context.Context, string, int) ([]string, bool) {
	return nil, false
}
