// Package docgen renders acquisition results into markdown documents.
package docgen

import (
	"fmt"
	"strings"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
)

// maxRenderedComments caps the number of comments in a document.
const maxRenderedComments = 20

// Generate renders a markdown document from an acquisition result. The
// header fields are always present; Description, Transcript and Comments
// sections appear only when their data exists. The trailing line carries a
// rough token estimate of everything above it.
func Generate(result *models.AcquisitionResult, includeComments bool) string {
	var b strings.Builder

	meta := result.Metadata
	b.WriteString("# YouTube Video Documentation\n")
	fmt.Fprintf(&b, "**Title:** %s\n", meta.Title)
	fmt.Fprintf(&b, "**URL:** %s\n", meta.URL)
	fmt.Fprintf(&b, "**Duration:** %s\n", FormatDuration(meta.Duration))
	fmt.Fprintf(&b, "**Views:** %s\n", stringOrUnknown(viewCount(meta.ViewCount)))
	fmt.Fprintf(&b, "**Channel:** %s\n", stringOrUnknown(meta.Channel))
	fmt.Fprintf(&b, "**Upload Date:** %s\n\n", stringOrUnknown(meta.UploadDate))

	if meta.Description != nil && *meta.Description != "" {
		b.WriteString("## Description\n")
		fmt.Fprintf(&b, "%s\n\n", *meta.Description)
	}

	if result.Transcript != nil && *result.Transcript != "" {
		b.WriteString("## Transcript\n")
		fmt.Fprintf(&b, "%s\n\n", *result.Transcript)
	}

	if includeComments && len(result.Comments) > 0 {
		b.WriteString("## Comments\n")
		comments := result.Comments
		if len(comments) > maxRenderedComments {
			comments = comments[:maxRenderedComments]
		}
		for i, comment := range comments {
			fmt.Fprintf(&b, "**Comment %d:** %s\n\n", i+1, comment)
		}
	}

	content := b.String()
	fmt.Fprintf(&b, "**Estimated Tokens:** %d\n", EstimateTokens(content))

	return b.String()
}

// FormatDuration renders a duration in seconds as a compact human string,
// e.g. 5s, 4m 13s, 1h 2m 3s.
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60)
}

// EstimateTokens approximates the token count of text at four characters
// per token, with a floor of one.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func viewCount(count *int64) *string {
	if count == nil {
		return nil
	}
	s := fmt.Sprintf("%d", *count)
	return &s
}

func stringOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return "Unknown"
	}
	return *s
}
