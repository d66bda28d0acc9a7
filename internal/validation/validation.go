// Package validation provides YouTube URL validation and video ID extraction.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
)

// MinTranscriptLength is the smallest accepted transcript bound.
const MinTranscriptLength = 100

var videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// urlPatterns cover the common YouTube URL forms: standard watch URLs,
// shortened URLs, embed URLs, direct video URLs, and mobile URLs.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:m\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
}

// InvalidInputError reports a query that was rejected before any network
// call was made.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// ExtractVideoID extracts the 11-character video identifier from a YouTube
// URL. It returns ("", false) for malformed or ambiguous input; it never
// fails for control flow.
func ExtractVideoID(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	trimmed := strings.TrimSpace(rawURL)

	for _, pattern := range urlPatterns {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			if IsValidVideoID(m[1]) {
				return m[1], true
			}
		}
	}

	// Fallback to URL parsing for edge cases the patterns miss.
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	if strings.HasSuffix(parsed.Host, "youtube.com") && parsed.Path == "/watch" {
		if id := parsed.Query().Get("v"); IsValidVideoID(id) {
			return id, true
		}
	}

	if parsed.Host == "youtu.be" && parsed.Path != "" {
		id := strings.TrimPrefix(parsed.Path, "/")
		if IsValidVideoID(id) {
			return id, true
		}
	}

	return "", false
}

// IsValidVideoID reports whether s is an 11-character video identifier.
func IsValidVideoID(s string) bool {
	return videoIDRegex.MatchString(s)
}

// IsValidYouTubeURL reports whether a video identifier can be extracted
// from the URL.
func IsValidYouTubeURL(rawURL string) bool {
	_, ok := ExtractVideoID(rawURL)
	return ok
}

// NormalizeURL rewrites any recognized YouTube URL form to the canonical
// watch URL, or returns ("", false) if the input is not recognized.
func NormalizeURL(rawURL string) (string, bool) {
	id, ok := ExtractVideoID(rawURL)
	if !ok {
		return "", false
	}
	return models.WatchURL(id), true
}

// NewVideoQuery validates the raw request parameters and constructs an
// immutable VideoQuery. All validation happens here, before any network
// call; a nil error guarantees a usable video identifier.
func NewVideoQuery(rawURL string, maxTranscriptLength int, includeComments bool, language string) (*models.VideoQuery, error) {
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return nil, &InvalidInputError{Message: fmt.Sprintf("invalid YouTube URL format: %q", rawURL)}
	}

	if maxTranscriptLength < MinTranscriptLength {
		return nil, &InvalidInputError{Message: fmt.Sprintf("transcript length must be at least %d characters", MinTranscriptLength)}
	}

	if language == "" {
		language = "en"
	}

	return &models.VideoQuery{
		URL:                 rawURL,
		VideoID:             videoID,
		MaxTranscriptLength: maxTranscriptLength,
		IncludeComments:     includeComments,
		Language:            language,
	}, nil
}
