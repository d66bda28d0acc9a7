package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
)

// DataAPIProvider is the primary metadata provider, backed by the YouTube
// Data API v3. It supplies the richest field set: title, description,
// duration, views, channel, upload date, and thumbnail.
type DataAPIProvider struct {
	service *youtube.Service
}

// NewDataAPIProvider creates a Data API provider. It fails when the key is
// empty or the underlying service cannot be constructed.
func NewDataAPIProvider(ctx context.Context, apiKey string) (*DataAPIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &DataAPIProvider{service: service}, nil
}

func (p *DataAPIProvider) Name() string {
	return "youtube-data-api"
}

// Fetch retrieves snippet, contentDetails, and statistics for one video.
func (p *DataAPIProvider) Fetch(ctx context.Context, videoID, url string) (*models.VideoMetadata, error) {
	call := p.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Cause: err}
	}

	if len(response.Items) == 0 {
		return nil, &UnavailableError{Provider: p.Name(), Cause: fmt.Errorf("video %s not available", videoID)}
	}

	return p.mapVideo(response.Items[0], videoID, url), nil
}

func (p *DataAPIProvider) mapVideo(video *youtube.Video, videoID, url string) *models.VideoMetadata {
	meta := &models.VideoMetadata{
		Title:   "Unknown Title",
		URL:     url,
		VideoID: videoID,
	}

	if video.Snippet != nil {
		if video.Snippet.Title != "" {
			meta.Title = video.Snippet.Title
		}
		meta.Description = strPtr(video.Snippet.Description)
		meta.Channel = strPtr(video.Snippet.ChannelTitle)
		if video.Snippet.PublishedAt != "" {
			meta.UploadDate = strPtr(video.Snippet.PublishedAt)
		}

		if video.Snippet.Thumbnails != nil {
			// Prefer the largest thumbnail available.
			switch {
			case video.Snippet.Thumbnails.Maxres != nil:
				meta.ThumbnailURL = strPtr(video.Snippet.Thumbnails.Maxres.Url)
			case video.Snippet.Thumbnails.High != nil:
				meta.ThumbnailURL = strPtr(video.Snippet.Thumbnails.High.Url)
			case video.Snippet.Thumbnails.Default != nil:
				meta.ThumbnailURL = strPtr(video.Snippet.Thumbnails.Default.Url)
			}
		}
	}

	if video.ContentDetails != nil && video.ContentDetails.Duration != "" {
		if seconds, err := ParseVideoDuration(video.ContentDetails.Duration); err == nil {
			meta.Duration = seconds
		}
	}

	if video.Statistics != nil {
		meta.ViewCount = int64Ptr(int64(video.Statistics.ViewCount))
	}

	return meta
}

// Helper functions for pointer conversions

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

// ParseVideoDuration converts ISO 8601 duration to seconds
// Example: "PT4M13S" -> 253 seconds
func ParseVideoDuration(duration string) (int, error) {
	if !strings.HasPrefix(duration, "PT") {
		return 0, fmt.Errorf("invalid duration format: %s", duration)
	}

	duration = strings.TrimPrefix(duration, "PT")

	var hours, minutes, seconds int

	if hIdx := strings.Index(duration, "H"); hIdx != -1 {
		h, err := strconv.Atoi(duration[:hIdx])
		if err != nil {
			return 0, err
		}
		hours = h
		duration = duration[hIdx+1:]
	}

	if mIdx := strings.Index(duration, "M"); mIdx != -1 {
		m, err := strconv.Atoi(duration[:mIdx])
		if err != nil {
			return 0, err
		}
		minutes = m
		duration = duration[mIdx+1:]
	}

	if sIdx := strings.Index(duration, "S"); sIdx != -1 {
		s, err := strconv.Atoi(duration[:sIdx])
		if err != nil {
			return 0, err
		}
		seconds = s
	}

	return hours*3600 + minutes*60 + seconds, nil
}
