package service

import (
	"fmt"
	"strings"
)

// ProcessingError reports a failure of one pipeline stage.
type ProcessingError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// StorageError reports a cache or upload failure.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// UserMessage rewrites an internal error into a message fit for display.
// Unavailable-video and missing-caption failures get dedicated
// explanations; everything else passes through with a generic prefix.
func UserMessage(err error) string {
	detail := err.Error()
	lower := strings.ToLower(detail)

	switch {
	case strings.Contains(lower, "not available"):
		return "Video not available. Please check that the video is public and the URL is correct."
	case strings.Contains(lower, "transcript"):
		return "Transcript not available for this video. Try a different video or check if captions are enabled."
	default:
		return fmt.Sprintf("Error processing video: %s", detail)
	}
}
