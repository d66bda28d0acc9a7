package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodels "github.com/ytdoc/youtube-doc-service-go/internal/db/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/provider"
	"github.com/ytdoc/youtube-doc-service-go/internal/publisher"
	"github.com/ytdoc/youtube-doc-service-go/internal/queue"
	"github.com/ytdoc/youtube-doc-service-go/internal/transcript"
	"github.com/ytdoc/youtube-doc-service-go/internal/worker"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

func init() {
	_ = logger.Init("error", "")
}

const testVideoURL = "https://www.youtube.com/watch?v=abc12345678"

type stubProvider struct {
	meta  *models.VideoMetadata
	err   error
	calls int32
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(ctx context.Context, videoID, url string) (*models.VideoMetadata, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	meta := *p.meta
	meta.VideoID = videoID
	meta.URL = url
	return &meta, nil
}

type stubTranscripts struct {
	text  string
	ok    bool
	calls int32
}

func (f *stubTranscripts) Fetch(ctx context.Context, videoID, language string, maxLength int) (string, bool) {
	atomic.AddInt32(&f.calls, 1)
	if !f.ok {
		return "", false
	}
	return transcript.Truncate(f.text, maxLength), true
}

type stubStore struct {
	existing map[string]string
	putErr   error
	puts     int32
}

func (s *stubStore) Exists(ctx context.Context, videoID string) (string, bool, error) {
	url, ok := s.existing[videoID]
	return url, ok, nil
}

func (s *stubStore) Put(ctx context.Context, videoID, content string) (string, error) {
	atomic.AddInt32(&s.puts, 1)
	if s.putErr != nil {
		return "", s.putErr
	}
	return "http://store.example.com/docs/youtube/" + videoID + ".md", nil
}

type mapCache struct {
	entries map[string]string
}

func (c *mapCache) Get(ctx context.Context, videoID string) (string, bool) {
	url, ok := c.entries[videoID]
	return url, ok
}

func (c *mapCache) Set(ctx context.Context, videoID, contentURL string) {
	c.entries[videoID] = contentURL
}

type stubRecorder struct {
	docs []*dbmodels.Document
}

func (r *stubRecorder) UpsertDocument(ctx context.Context, doc *dbmodels.Document) error {
	r.docs = append(r.docs, doc)
	return nil
}

type stubEvents struct {
	published []*publisher.DocumentGeneratedEvent
}

func (e *stubEvents) PublishDocumentGenerated(ctx context.Context, event *publisher.DocumentGeneratedEvent) error {
	e.published = append(e.published, event)
	return nil
}

type stubRefresh struct {
	payloads []*queue.RefreshDocumentPayload
}

func (r *stubRefresh) EnqueueDocumentRefresh(payload *queue.RefreshDocumentPayload, after time.Duration) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

type fixture struct {
	svc        *DocumentService
	provider   *stubProvider
	transcript *stubTranscripts
	store      *stubStore
	cache      *mapCache
	recorder   *stubRecorder
	events     *stubEvents
	refresh    *stubRefresh
}

func newFixture(t *testing.T, mutate func(*fixture)) *fixture {
	t.Helper()

	title := "T"
	f := &fixture{
		provider:   &stubProvider{meta: &models.VideoMetadata{Title: title, Duration: 5}},
		transcript: &stubTranscripts{text: strings.Repeat("a", 500), ok: true},
		store:      &stubStore{existing: map[string]string{}},
		cache:      &mapCache{entries: map[string]string{}},
		recorder:   &stubRecorder{},
		events:     &stubEvents{},
		refresh:    &stubRefresh{},
	}
	if mutate != nil {
		mutate(f)
	}

	chain := provider.NewChain([]provider.MetadataProvider{f.provider})
	orch := NewOrchestrator(chain, f.transcript, nil, worker.NewPool(2), time.Second)

	opts := Options{
		Cache:          f.cache,
		Records:        f.recorder,
		Events:         f.events,
		Refresh:        f.refresh,
		CacheTTL:       time.Hour,
		MaxDisplaySize: 300_000,
	}
	if f.store != nil {
		opts.Store = f.store
	}

	f.svc = NewDocumentService(orch, opts)
	return f
}

func collect(t *testing.T, ch <-chan models.ProgressEvent) []models.ProgressEvent {
	t.Helper()

	var events []models.ProgressEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out waiting for stream to close; got %d events", len(events))
		}
	}
}

func statuses(events []models.ProgressEvent) []models.ProgressStatus {
	out := make([]models.ProgressStatus, len(events))
	for i, e := range events {
		out[i] = e.Status
	}
	return out
}

func TestAcquire_EndToEnd(t *testing.T) {
	f := newFixture(t, nil)

	query := &models.VideoQuery{
		URL:                 testVideoURL,
		VideoID:             "abc12345678",
		MaxTranscriptLength: 100,
		Language:            "en",
	}

	result, err := f.svc.orchestrator.Acquire(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, "T", result.Metadata.Title)
	assert.Equal(t, 5, result.Metadata.Duration)
	require.NotNil(t, result.Transcript)
	assert.Len(t, *result.Transcript, 100+len(models.TruncationMarker))
	assert.True(t, strings.HasSuffix(*result.Transcript, models.TruncationMarker))
	assert.Nil(t, result.Comments)
}

func TestAcquire_TranscriptFailureDegrades(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.transcript.ok = false
	})

	query := &models.VideoQuery{
		URL:                 testVideoURL,
		VideoID:             "abc12345678",
		MaxTranscriptLength: 1000,
		Language:            "en",
	}

	result, err := f.svc.orchestrator.Acquire(context.Background(), query)
	require.NoError(t, err)
	assert.Nil(t, result.Transcript)
	assert.NotNil(t, result.Metadata)
}

func TestProcessQuery_InvalidURL(t *testing.T) {
	f := newFixture(t, nil)

	qc := f.svc.ProcessQuery(context.Background(), "not a url", 10000, false, "en")

	assert.False(t, qc.Result)
	assert.Contains(t, qc.ErrorMessage, "Error processing video:")
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.provider.calls))
}

func TestProcessQuery_CacheHitSkipsAcquisition(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.cache.entries["abc12345678"] = "http://store.example.com/docs/youtube/abc12345678.md"
	})

	qc := f.svc.ProcessQuery(context.Background(), testVideoURL, 10000, false, "en")

	assert.True(t, qc.Result)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", qc.ContentURL)
	assert.Empty(t, qc.Content)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.provider.calls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.transcript.calls))
}

func TestProcessQuery_StoreHitBackfillsCache(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.store.existing["abc12345678"] = "http://store.example.com/docs/youtube/abc12345678.md"
	})

	qc := f.svc.ProcessQuery(context.Background(), testVideoURL, 10000, false, "en")

	assert.True(t, qc.Result)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", qc.ContentURL)
	assert.Equal(t, qc.ContentURL, f.cache.entries["abc12345678"])
}

func TestProcessQuery_GeneratesAndPublishes(t *testing.T) {
	f := newFixture(t, nil)

	qc := f.svc.ProcessQuery(context.Background(), testVideoURL, 100, false, "en")

	require.True(t, qc.Result)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", qc.ContentURL)
	assert.Empty(t, qc.Content)
	require.NotNil(t, qc.VideoInfo)
	assert.Equal(t, "T", qc.VideoInfo.Title)

	require.Len(t, f.recorder.docs, 1)
	assert.Equal(t, "abc12345678", f.recorder.docs[0].VideoID)
	assert.True(t, f.recorder.docs[0].HasTranscript)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, "T", f.events.published[0].Title)

	require.Len(t, f.refresh.payloads, 1)
	assert.Equal(t, "abc12345678", f.refresh.payloads[0].VideoID)

	assert.Equal(t, qc.ContentURL, f.cache.entries["abc12345678"])
}

func TestProcessQuery_UploadFailureServesInline(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.store.putErr = errors.New("bucket gone")
	})

	qc := f.svc.ProcessQuery(context.Background(), testVideoURL, 100, false, "en")

	assert.True(t, qc.Result)
	assert.Empty(t, qc.ContentURL)
	assert.Contains(t, qc.Content, "# YouTube Video Documentation")
	assert.Empty(t, f.recorder.docs)
}

func TestCropForDisplay(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.maxDisplaySize = 1000

	short := strings.Repeat("x", 1000)
	assert.Equal(t, short, f.svc.cropForDisplay(short))

	long := strings.Repeat("x", 1500)
	cropped := f.svc.cropForDisplay(long)
	assert.True(t, strings.HasPrefix(cropped, "(Content cropped to 1k characters)\n"))
	assert.Len(t, cropped, 1000+len("(Content cropped to 1k characters)\n"))
}

func TestStream_CacheHitProducesTwoEvents(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.cache.entries["abc12345678"] = "http://store.example.com/docs/youtube/abc12345678.md"
	})

	events := collect(t, f.svc.Stream(context.Background(), testVideoURL, 10000, false, "en"))

	require.Len(t, events, 2)
	assert.Equal(t, models.StatusConnected, events[0].Status)
	assert.Equal(t, models.StatusComplete, events[1].Status)
	assert.True(t, events[1].Cached)
	assert.Equal(t, "http://store.example.com/docs/youtube/abc12345678.md", events[1].ContentURL)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.provider.calls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.transcript.calls))
}

func TestStream_InvalidURLTerminatesWithError(t *testing.T) {
	f := newFixture(t, nil)

	events := collect(t, f.svc.Stream(context.Background(), "nope", 10000, false, "en"))

	got := statuses(events)
	assert.Equal(t, []models.ProgressStatus{
		models.StatusConnected,
		models.StatusURLValidation,
		models.StatusError,
	}, got)
	assert.NotEmpty(t, events[len(events)-1].Error)
}

func TestStream_FullPipelineOrder(t *testing.T) {
	f := newFixture(t, nil)

	events := collect(t, f.svc.Stream(context.Background(), testVideoURL, 100, false, "en"))

	assert.Equal(t, []models.ProgressStatus{
		models.StatusConnected,
		models.StatusURLValidation,
		models.StatusURLValidated,
		models.StatusCacheCheck,
		models.StatusCacheMiss,
		models.StatusVideoMetadata,
		models.StatusVideoMetadataDone,
		models.StatusTranscript,
		models.StatusTranscriptDone,
		models.StatusDocGeneration,
		models.StatusDocGenerated,
		models.StatusS3Upload,
		models.StatusComplete,
	}, statuses(events))

	terminal := events[len(events)-1]
	assert.Equal(t, "T", terminal.Title)
	assert.False(t, terminal.Cached)
	assert.NotEmpty(t, terminal.ContentURL)

	// exactly one terminal event
	count := 0
	for _, e := range events {
		if e.Status.Terminal() {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStream_TranscriptFailureContinues(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.transcript.ok = false
	})

	events := collect(t, f.svc.Stream(context.Background(), testVideoURL, 100, false, "en"))

	got := statuses(events)
	skippedAt := -1
	for i, s := range got {
		if s == models.StatusTranscriptSkipped {
			skippedAt = i
		}
	}
	require.GreaterOrEqual(t, skippedAt, 0, "expected a transcript_skipped event")
	require.Less(t, skippedAt+1, len(got))
	assert.Equal(t, models.StatusDocGeneration, got[skippedAt+1])
	assert.Equal(t, models.StatusComplete, got[len(got)-1])
}

func TestStream_UploadFailureIsFatal(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.store.putErr = errors.New("bucket gone")
	})

	events := collect(t, f.svc.Stream(context.Background(), testVideoURL, 100, false, "en"))

	got := statuses(events)
	assert.Equal(t, models.StatusS3Upload, got[len(got)-2])
	assert.Equal(t, models.StatusError, got[len(got)-1])
}

func TestStream_NoStoreDeliversInlineContent(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.store = nil
	})

	events := collect(t, f.svc.Stream(context.Background(), testVideoURL, 100, false, "en"))

	terminal := events[len(events)-1]
	assert.Equal(t, models.StatusComplete, terminal.Status)
	assert.Empty(t, terminal.ContentURL)
	assert.Contains(t, terminal.Content, "# YouTube Video Documentation")
}

func TestRegenerate(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.Regenerate(context.Background(), "abc12345678", 100, false, "en")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.store.puts))
	require.Len(t, f.recorder.docs, 1)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("video is not available in your region"),
			"Video not available. Please check that the video is public and the URL is correct."},
		{errors.New("no transcript found for video"),
			"Transcript not available for this video. Try a different video or check if captions are enabled."},
		{errors.New("boom"),
			"Error processing video: boom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}
