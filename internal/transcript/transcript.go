// Package transcript retrieves video captions through a language-preference
// fallback ladder. Absence of a transcript is a valid result; the fetcher
// never surfaces an error to its caller.
package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

const (
	defaultBaseURL = "https://www.youtube.com/api/timedtext"

	// fallbackLanguage is tried as the last tier regardless of the
	// requested language or track origin.
	fallbackLanguage = "en"
)

// Fetcher retrieves and formats transcripts. Implementations must treat
// absence as a valid terminal state, never as an error.
type Fetcher interface {
	// Fetch returns the flattened, length-bounded transcript text, or
	// ("", false) when no transcript is obtainable.
	Fetch(ctx context.Context, videoID, language string, maxLength int) (string, bool)
}

// HTTPFetcher fetches transcripts from the YouTube timedtext endpoints.
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
}

// NewHTTPFetcher creates a transcript fetcher. The HTTP client carries the
// process-wide proxy configuration, so every tier routes through it
// identically.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:  client,
		baseURL: defaultBaseURL,
	}
}

// track is one entry of the timedtext track listing. Kind "asr" marks an
// auto-generated track; manually authored tracks have an empty kind.
type track struct {
	LangCode string `xml:"lang_code,attr"`
	Kind     string `xml:"kind,attr"`
	Name     string `xml:"name,attr"`
}

type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []track  `xml:"track"`
}

type timedText struct {
	XMLName  xml.Name  `xml:"transcript"`
	Segments []segment `xml:"text"`
}

type segment struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// tier is one ordered attempt of the fallback ladder.
type tier struct {
	name   string
	handle func(ctx context.Context, videoID, language string) (string, error)
}

// Fetch walks the fallback ladder: direct fetch in the requested language,
// then a manually-authored track in that language, then an auto-generated
// track in that language, then any track in the default language. Each tier
// failure is logged and converted into "try next".
func (f *HTTPFetcher) Fetch(ctx context.Context, videoID, language string, maxLength int) (string, bool) {
	if language == "" {
		language = fallbackLanguage
	}

	tiers := []tier{
		{name: "direct", handle: f.fetchDirect},
		{name: "manual", handle: f.fetchManual},
		{name: "generated", handle: f.fetchGenerated},
		{name: "default-language", handle: f.fetchDefaultLanguage},
	}

	for _, t := range tiers {
		text, err := t.handle(ctx, videoID, language)
		if err != nil {
			logger.Log.Debug("transcript tier failed, trying next",
				zap.String("tier", t.name),
				zap.String("videoId", videoID),
				zap.String("language", language),
				zap.Error(err),
			)
			continue
		}
		return Truncate(text, maxLength), true
	}

	logger.Log.Warn("no transcript obtainable at any tier",
		zap.String("videoId", videoID),
		zap.String("language", language),
	)
	return "", false
}

// fetchDirect requests the track in the requested language without
// consulting the track listing.
func (f *HTTPFetcher) fetchDirect(ctx context.Context, videoID, language string) (string, error) {
	return f.fetchTrack(ctx, videoID, language, "")
}

// fetchManual selects a manually-authored track in the requested language
// from the track listing.
func (f *HTTPFetcher) fetchManual(ctx context.Context, videoID, language string) (string, error) {
	return f.fetchListed(ctx, videoID, func(t track) bool {
		return t.LangCode == language && t.Kind != "asr"
	})
}

// fetchGenerated selects an auto-generated track in the requested language.
func (f *HTTPFetcher) fetchGenerated(ctx context.Context, videoID, language string) (string, error) {
	return f.fetchListed(ctx, videoID, func(t track) bool {
		return t.LangCode == language && t.Kind == "asr"
	})
}

// fetchDefaultLanguage selects any track in the default language regardless
// of origin.
func (f *HTTPFetcher) fetchDefaultLanguage(ctx context.Context, videoID, _ string) (string, error) {
	return f.fetchListed(ctx, videoID, func(t track) bool {
		return t.LangCode == fallbackLanguage
	})
}

// fetchListed lists available tracks and fetches the first one accepted by
// the selector.
func (f *HTTPFetcher) fetchListed(ctx context.Context, videoID string, accept func(track) bool) (string, error) {
	tracks, err := f.listTracks(ctx, videoID)
	if err != nil {
		return "", err
	}

	for _, t := range tracks {
		if accept(t) {
			return f.fetchTrack(ctx, videoID, t.LangCode, t.Kind)
		}
	}

	return "", fmt.Errorf("no matching transcript track for video %s", videoID)
}

func (f *HTTPFetcher) listTracks(ctx context.Context, videoID string) ([]track, error) {
	params := url.Values{}
	params.Set("type", "list")
	params.Set("v", videoID)

	body, err := f.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse track list: %w", err)
	}

	if len(list.Tracks) == 0 {
		return nil, fmt.Errorf("no transcript tracks listed for video %s", videoID)
	}

	return list.Tracks, nil
}

func (f *HTTPFetcher) fetchTrack(ctx context.Context, videoID, language, kind string) (string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", language)
	if kind != "" {
		params.Set("kind", kind)
	}

	body, err := f.get(ctx, params)
	if err != nil {
		return "", err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}

	text := Flatten(tt.Segments)
	if text == "" {
		return "", fmt.Errorf("transcript for video %s is empty", videoID)
	}

	return text, nil
}

func (f *HTTPFetcher) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("timedtext returned empty body")
	}

	return body, nil
}

// Flatten joins timed segments into a single text blob, one segment per
// line, with XML entities unescaped.
func Flatten(segments []segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(html.UnescapeString(s.Text))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Truncate bounds text to maxLength characters and appends the truncation
// marker when cut. The marker is additional to the limit, so the result can
// slightly exceed the configured max.
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 || len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + models.TruncationMarker
}
