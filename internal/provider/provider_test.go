package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

func init() {
	_ = logger.Init("error", "")
}

// stubProvider returns a canned result or failure and counts calls.
type stubProvider struct {
	name  string
	meta  *models.VideoMetadata
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(_ context.Context, videoID, url string) (*models.VideoMetadata, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		meta: &models.VideoMetadata{Title: "T", VideoID: "abc12345678", Duration: 5},
	}
	secondary := &stubProvider{name: "secondary"}

	chain := NewChain([]MetadataProvider{primary, secondary})
	meta := chain.Fetch(context.Background(), "abc12345678", "https://www.youtube.com/watch?v=abc12345678")

	require.NotNil(t, meta)
	assert.Equal(t, "T", meta.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "secondary must not be attempted after primary success")
}

func TestChain_FallsThroughToSecondary(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		err:  &UnavailableError{Provider: "primary", Cause: errors.New("quota exceeded")},
	}
	secondary := &stubProvider{
		name: "secondary",
		meta: &models.VideoMetadata{Title: "Fallback Title", VideoID: "abc12345678"},
	}

	chain := NewChain([]MetadataProvider{primary, secondary})
	meta := chain.Fetch(context.Background(), "abc12345678", "url")

	require.NotNil(t, meta)
	assert.Equal(t, "Fallback Title", meta.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChain_AllFail_ReturnsPlaceholder(t *testing.T) {
	failure := &UnavailableError{Provider: "x", Cause: errors.New("boom")}
	primary := &stubProvider{name: "primary", err: failure}
	secondary := &stubProvider{name: "secondary", err: failure}

	var failed []string
	chain := NewChain(
		[]MetadataProvider{primary, secondary},
		WithFailureHook(func(p string) { failed = append(failed, p) }),
	)

	meta := chain.Fetch(context.Background(), "abc12345678", "https://www.youtube.com/watch?v=abc12345678")

	require.NotNil(t, meta)
	assert.Equal(t, "Video abc12345678", meta.Title)
	assert.Equal(t, 0, meta.Duration)
	require.NotNil(t, meta.Channel)
	assert.Equal(t, "Unknown Channel", *meta.Channel)
	require.NotNil(t, meta.ThumbnailURL)
	assert.Equal(t, "https://img.youtube.com/vi/abc12345678/maxresdefault.jpg", *meta.ThumbnailURL)
	assert.Equal(t, []string{"primary", "secondary"}, failed)
}

func TestChain_EmptyProviderList(t *testing.T) {
	chain := NewChain(nil)
	meta := chain.Fetch(context.Background(), "abc12345678", "url")

	require.NotNil(t, meta)
	assert.Equal(t, "Video abc12345678", meta.Title)
}

func TestPlaceholder_Deterministic(t *testing.T) {
	a := Placeholder("dQw4w9WgXcQ", "u")
	b := Placeholder("dQw4w9WgXcQ", "u")
	assert.Equal(t, a, b)
}

func TestOEmbedProvider_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("url"), "abc12345678")
		fmt.Fprint(w, `{"title":"Test Video","author_name":"Test Channel","thumbnail_url":"https://i.ytimg.com/vi/abc12345678/hqdefault.jpg"}`)
	}))
	defer server.Close()

	p := NewOEmbedProvider(server.Client())
	p.endpoint = server.URL

	meta, err := p.Fetch(context.Background(), "abc12345678", "https://www.youtube.com/watch?v=abc12345678")
	require.NoError(t, err)
	assert.Equal(t, "Test Video", meta.Title)
	require.NotNil(t, meta.Channel)
	assert.Equal(t, "Test Channel", *meta.Channel)
	assert.Equal(t, "abc12345678", meta.VideoID)
}

func TestOEmbedProvider_Fetch_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOEmbedProvider(server.Client())
	p.endpoint = server.URL

	_, err := p.Fetch(context.Background(), "abc12345678", "url")
	require.Error(t, err)

	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestOEmbedProvider_Fetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer server.Close()

	p := NewOEmbedProvider(server.Client())
	p.endpoint = server.URL

	_, err := p.Fetch(context.Background(), "abc12345678", "url")
	require.Error(t, err)
}

func TestParseVideoDuration(t *testing.T) {
	tests := []struct {
		duration string
		want     int
		wantErr  bool
	}{
		{"PT4M13S", 253, false},
		{"PT1H2M3S", 3723, false},
		{"PT45S", 45, false},
		{"PT2H", 7200, false},
		{"PT0S", 0, false},
		{"4M13S", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			got, err := ParseVideoDuration(tt.duration)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
