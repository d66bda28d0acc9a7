// Package models contains the data models and DTOs for the YouTube document service.
package models

import (
	"fmt"
	"time"
)

// TruncationMarker is appended to a transcript cut at the configured maximum
// length. The marker is appended in addition to the limit, so a truncated
// transcript is max length + marker length characters long.
const TruncationMarker = "\n[Transcript truncated...]"

// VideoQuery holds the validated parameters of one processing request.
// Construct it with NewVideoQuery; instances are immutable after validation.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoQuery struct {
	URL                 string `json:"url"`
	VideoID             string `json:"video_id"`
	MaxTranscriptLength int    `json:"max_transcript_length"`
	IncludeComments     bool   `json:"include_comments"`
	Language            string `json:"language"`
}

// VideoMetadata holds metadata for a single video. Exactly one provider's
// result is used in full; fields a provider cannot supply stay nil.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoMetadata struct {
	Title        string            `json:"title"`
	Description  *string           `json:"description,omitempty"`
	Duration     int               `json:"duration"`
	ViewCount    *int64            `json:"view_count,omitempty"`
	Channel      *string           `json:"channel,omitempty"`
	UploadDate   *string           `json:"upload_date,omitempty"`
	URL          string            `json:"url"`
	VideoID      string            `json:"video_id"`
	ThumbnailURL *string           `json:"thumbnail_url,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// AcquisitionResult is the output of one acquisition pipeline run.
// Transcript and Comments may be nil; metadata is always present.
type AcquisitionResult struct {
	Metadata   *VideoMetadata `json:"metadata"`
	Transcript *string        `json:"transcript,omitempty"`
	Comments   []string       `json:"comments,omitempty"`
}

// ProgressStatus identifies a stage of the streaming pipeline.
type ProgressStatus string

// Progress statuses, in emission order. Complete and Error are terminal.
const (
	StatusConnected         ProgressStatus = "connected"
	StatusURLValidation     ProgressStatus = "url_validation"
	StatusURLValidated      ProgressStatus = "url_validated"
	StatusCacheCheck        ProgressStatus = "cache_check"
	StatusCacheMiss         ProgressStatus = "cache_miss"
	StatusVideoMetadata     ProgressStatus = "video_metadata"
	StatusVideoMetadataDone ProgressStatus = "video_metadata_done"
	StatusTranscript        ProgressStatus = "transcript_processing"
	StatusTranscriptDone    ProgressStatus = "transcript_done"
	StatusTranscriptSkipped ProgressStatus = "transcript_skipped"
	StatusDocGeneration     ProgressStatus = "doc_generation"
	StatusDocGenerated      ProgressStatus = "doc_generated"
	StatusS3Upload          ProgressStatus = "s3_upload"
	StatusComplete          ProgressStatus = "complete"
	StatusError             ProgressStatus = "error"
)

// Terminal reports whether no further events follow this status.
func (s ProgressStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// ProgressEvent is one record of the streaming progress protocol. Events are
// transient: produced, transmitted, discarded.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProgressEvent struct {
	Status     ProgressStatus `json:"status"`
	Message    string         `json:"message"`
	VideoID    string         `json:"video_id,omitempty"`
	Title      string         `json:"title,omitempty"`
	Length     int            `json:"length,omitempty"`
	Size       int            `json:"size,omitempty"`
	ContentURL string         `json:"content_url,omitempty"`
	Content    string         `json:"content,omitempty"`
	Cached     bool           `json:"cached,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// QueryContext mirrors the synchronous processing result returned to callers
// of the JSON API and the server-rendered pages. ErrorMessage is a sentinel
// for user display; the content area shows either Content or ContentURL.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type QueryContext struct {
	VideoURL                string         `json:"video_url"`
	DefaultTranscriptLength int            `json:"default_transcript_length"`
	IncludeComments         bool           `json:"include_comments"`
	Language                string         `json:"language"`
	Content                 string         `json:"content,omitempty"`
	ContentURL              string         `json:"content_url,omitempty"`
	ErrorMessage            string         `json:"error_message,omitempty"`
	Result                  bool           `json:"result"`
	VideoInfo               *VideoMetadata `json:"video_info,omitempty"`
}

// ErrorResponse is the standard error envelope for API endpoints.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// DefaultThumbnailURL returns the conventional thumbnail location for a
// video identifier, used by the placeholder metadata provider.
func DefaultThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}

// WatchURL returns the canonical watch URL for a video identifier.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}
