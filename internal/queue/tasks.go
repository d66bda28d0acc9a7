// Package queue holds the background refresh queue. Documents for
// previously processed videos are regenerated out of band so cached
// documents do not go stale forever.
package queue

import (
	"encoding/json"
	"fmt"
)

// TypeRefreshDocument regenerates the stored document for a video.
const TypeRefreshDocument = "docgen:refresh"

// RefreshDocumentPayload is the payload for document refresh tasks.
type RefreshDocumentPayload struct {
	VideoID             string `json:"video_id"`
	MaxTranscriptLength int    `json:"max_transcript_length"`
	IncludeComments     bool   `json:"include_comments"`
	Language            string `json:"language"`
}

// NewRefreshDocumentTask creates a document refresh task payload.
func NewRefreshDocumentTask(videoID string, maxTranscriptLength int, includeComments bool, language string) (*RefreshDocumentPayload, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}

	if language == "" {
		language = "en"
	}

	return &RefreshDocumentPayload{
		VideoID:             videoID,
		MaxTranscriptLength: maxTranscriptLength,
		IncludeComments:     includeComments,
		Language:            language,
	}, nil
}

// Marshal serializes the payload to JSON.
func (p *RefreshDocumentPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalRefreshDocumentPayload deserializes JSON to payload.
func UnmarshalRefreshDocumentPayload(data []byte) (*RefreshDocumentPayload, error) {
	var payload RefreshDocumentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}
