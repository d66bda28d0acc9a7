package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// Stream reports pipeline progress over server-sent events, one event per
// stage, flushed immediately. The connection ends after the terminal event.
func (h *VideoHandler) Stream(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	maxTranscriptLength := fullTranscriptLength
	if raw := c.Query("max_transcript_length"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			maxTranscriptLength = n
		}
	}

	includeComments := c.Query("include_comments") == "true"

	language := c.Query("language")
	if language == "" {
		language = "en"
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	// Disable proxy buffering so events reach the client per stage.
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	events := h.service.Stream(ctx, rawURL, maxTranscriptLength, includeComments, language)

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Log.Error("failed to marshal progress event",
				zap.String("status", string(event.Status)),
				zap.Error(err),
			)
			continue
		}

		if _, err := c.Writer.WriteString("data: " + string(data) + "\n\n"); err != nil {
			// Client went away; the pipeline goroutine stops on ctx.
			return
		}
		c.Writer.Flush()

		if event.Status.Terminal() {
			return
		}
	}
}
