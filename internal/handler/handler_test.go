package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/provider"
	"github.com/ytdoc/youtube-doc-service-go/internal/service"
	"github.com/ytdoc/youtube-doc-service-go/internal/transcript"
	"github.com/ytdoc/youtube-doc-service-go/internal/worker"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "")
}

type fakeProvider struct{}

func (fakeProvider) Name() string { return "fake" }

func (fakeProvider) Fetch(ctx context.Context, videoID, url string) (*models.VideoMetadata, error) {
	return &models.VideoMetadata{Title: "Example", VideoID: videoID, URL: url, Duration: 5}, nil
}

type fakeTranscripts struct{}

func (fakeTranscripts) Fetch(ctx context.Context, videoID, language string, maxLength int) (string, bool) {
	return transcript.Truncate("hello transcript", maxLength), true
}

type fakeStore struct {
	existing map[string]string
}

func (s *fakeStore) Exists(ctx context.Context, videoID string) (string, bool, error) {
	url, ok := s.existing[videoID]
	return url, ok, nil
}

func (s *fakeStore) Put(ctx context.Context, videoID, content string) (string, error) {
	return "http://store.example.com/docs/youtube/" + videoID + ".md", nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	chain := provider.NewChain([]provider.MetadataProvider{fakeProvider{}})
	orch := service.NewOrchestrator(chain, fakeTranscripts{}, nil, worker.NewPool(2), time.Second)
	svc := service.NewDocumentService(orch, service.Options{
		Store: &fakeStore{existing: map[string]string{}},
	})

	videoHandler := NewVideoHandler(svc)
	apiHandler := NewAPIHandler(svc, nil)

	return SetupRouter(videoHandler, apiHandler, "../../web/templates/*.tmpl")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestIndexPage(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "YouTube to Doc")
	assert.Contains(t, w.Body.String(), "Python Tutorial")
}

func TestProcessIndex_RendersResult(t *testing.T) {
	router := newTestRouter(t)

	form := url.Values{"input_text": {"https://www.youtube.com/watch?v=abc12345678"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://store.example.com/docs/youtube/abc12345678.md")
}

func TestWatchPage_PrefillsURL(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watch?v=abc12345678", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://www.youtube.com/watch?v=abc12345678")
}

func TestAPIProcess_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIProcess_InvalidURL(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(ProcessRequest{URL: "not a video"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var qc models.QueryContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qc))
	assert.False(t, qc.Result)
	assert.NotEmpty(t, qc.ErrorMessage)
}

func TestAPIProcess_Success(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(ProcessRequest{URL: "https://youtu.be/abc12345678"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var qc models.QueryContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qc))
	assert.True(t, qc.Result)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", qc.ContentURL)
	require.NotNil(t, qc.VideoInfo)
	assert.Equal(t, "Example", qc.VideoInfo.Title)
}

func TestAPIEndpointsWithoutDatabase(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc12345678", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStream_RequiresURL(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStream_EmitsStagedEvents(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream?url="+url.QueryEscape("https://www.youtube.com/watch?v=abc12345678"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	body := w.Body.String()
	lines := strings.Split(strings.TrimSpace(body), "\n\n")

	var events []models.ProgressEvent
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "data: "), "unexpected frame: %q", line)
		var event models.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}

	require.NotEmpty(t, events)
	assert.Equal(t, models.StatusConnected, events[0].Status)

	terminal := events[len(events)-1]
	assert.Equal(t, models.StatusComplete, terminal.Status)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", terminal.ContentURL)

	terminalCount := 0
	for _, e := range events {
		if e.Status.Terminal() {
			terminalCount++
		}
	}
	assert.Equal(t, 1, terminalCount)
}

func TestStream_CacheHit(t *testing.T) {
	chain := provider.NewChain([]provider.MetadataProvider{fakeProvider{}})
	orch := service.NewOrchestrator(chain, fakeTranscripts{}, nil, worker.NewPool(2), time.Second)
	svc := service.NewDocumentService(orch, service.Options{
		Store: &fakeStore{existing: map[string]string{
			"abc12345678": "http://store.example.com/docs/youtube/abc12345678.md",
		}},
	})
	router := SetupRouter(NewVideoHandler(svc), NewAPIHandler(svc, nil), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream?url="+url.QueryEscape("https://youtu.be/abc12345678"), nil)
	router.ServeHTTP(w, req)

	body := strings.TrimSpace(w.Body.String())
	frames := strings.Split(body, "\n\n")
	require.Len(t, frames, 2)

	var terminal models.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &terminal))
	assert.Equal(t, models.StatusComplete, terminal.Status)
	assert.True(t, terminal.Cached)
}
