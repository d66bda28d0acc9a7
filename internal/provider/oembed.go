package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
)

const defaultOEmbedEndpoint = "https://www.youtube.com/oembed"

// OEmbedProvider is the secondary metadata provider. The oEmbed endpoint
// needs no credential and covers a narrower but overlapping field set:
// title, channel, and thumbnail. Duration and view count are not exposed.
type OEmbedProvider struct {
	client   *http.Client
	endpoint string
}

// NewOEmbedProvider creates an oEmbed provider using the given HTTP client.
// The client carries the process-wide proxy configuration, so all attempts
// route through it identically.
func NewOEmbedProvider(client *http.Client) *OEmbedProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &OEmbedProvider{
		client:   client,
		endpoint: defaultOEmbedEndpoint,
	}
}

func (p *OEmbedProvider) Name() string {
	return "oembed"
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (p *OEmbedProvider) Fetch(ctx context.Context, videoID, videoURL string) (*models.VideoMetadata, error) {
	reqURL := fmt.Sprintf("%s?url=%s&format=json", p.endpoint, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Cause: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{
			Provider: p.Name(),
			Cause:    fmt.Errorf("oembed returned status %d", resp.StatusCode),
		}
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Cause: fmt.Errorf("decode oembed response: %w", err)}
	}

	if body.Title == "" {
		return nil, &UnavailableError{Provider: p.Name(), Cause: fmt.Errorf("oembed response missing title")}
	}

	meta := &models.VideoMetadata{
		Title:        body.Title,
		Channel:      strPtr(body.AuthorName),
		ThumbnailURL: strPtr(body.ThumbnailURL),
		URL:          videoURL,
		VideoID:      videoID,
	}

	return meta, nil
}
