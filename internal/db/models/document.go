// Package models contains database records for generated documents.
package models

import "time"

// Document is the persistent record of one generated video document.
// A video has at most one record; regeneration updates it in place.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Document struct {
	VideoID         string    `db:"video_id"`
	Title           string    `db:"title"`
	Channel         string    `db:"channel"`
	ContentURL      string    `db:"content_url"`
	SizeBytes       int       `db:"size_bytes"`
	EstimatedTokens int       `db:"estimated_tokens"`
	HasTranscript   bool      `db:"has_transcript"`
	GeneratedAt     time.Time `db:"generated_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// NewDocument creates a Document record for a freshly generated document.
func NewDocument(videoID, title, channel, contentURL string, sizeBytes, estimatedTokens int, hasTranscript bool) *Document {
	now := time.Now()
	return &Document{
		VideoID:         videoID,
		Title:           title,
		Channel:         channel,
		ContentURL:      contentURL,
		SizeBytes:       sizeBytes,
		EstimatedTokens: estimatedTokens,
		HasTranscript:   hasTranscript,
		GeneratedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
