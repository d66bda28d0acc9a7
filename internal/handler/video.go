// Package handler contains the gin HTTP handlers: server-rendered pages,
// the streaming progress endpoint, and the JSON API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/service"
)

// displayTranscriptLength is the value prefilled in the page form.
const displayTranscriptLength = 243

// fullTranscriptLength effectively disables truncation for page-driven
// processing; pages always request the full transcript in English without
// comments.
const fullTranscriptLength = 10_000_000

// ExampleVideo is one entry of the index page example list.
type ExampleVideo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ExampleVideos are shown on the index page.
var ExampleVideos = []ExampleVideo{
	{Name: "Python Tutorial", URL: "https://www.youtube.com/watch?v=_uQrJ0TkZlc"},
	{Name: "FastAPI Crash Course", URL: "https://www.youtube.com/watch?v=7t2alSnE2-I"},
	{Name: "Machine Learning Basics", URL: "https://www.youtube.com/watch?v=Gv9_4yMHFhI"},
	{Name: "JavaScript ES6", URL: "https://www.youtube.com/watch?v=WZQc7RUAg18"},
}

// VideoHandler serves the pages and processing endpoints.
type VideoHandler struct {
	service *service.DocumentService
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(svc *service.DocumentService) *VideoHandler {
	return &VideoHandler{service: svc}
}

// Index renders the home page.
func (h *VideoHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"examples":                  ExampleVideos,
		"default_transcript_length": displayTranscriptLength,
	})
}

// ProcessIndex handles the home page form submission.
func (h *VideoHandler) ProcessIndex(c *gin.Context) {
	inputText := c.PostForm("input_text")

	qc := h.service.ProcessQuery(c.Request.Context(), inputText, fullTranscriptLength, false, "en")

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"examples":                  ExampleVideos,
		"default_transcript_length": displayTranscriptLength,
		"ctx":                       qc,
	})
}

// VideoPage renders the processing page for a specific video.
func (h *VideoHandler) VideoPage(c *gin.Context) {
	videoID := c.Param("video_id")

	c.HTML(http.StatusOK, "video.tmpl", gin.H{
		"video_id":                  videoID,
		"video_url":                 models.WatchURL(videoID),
		"default_transcript_length": displayTranscriptLength,
	})
}

// ProcessVideo processes the video named in the path.
func (h *VideoHandler) ProcessVideo(c *gin.Context) {
	videoID := c.Param("video_id")

	qc := h.service.ProcessQuery(c.Request.Context(), models.WatchURL(videoID), fullTranscriptLength, false, "en")

	c.HTML(http.StatusOK, "video.tmpl", gin.H{
		"video_id":                  videoID,
		"video_url":                 models.WatchURL(videoID),
		"default_transcript_length": displayTranscriptLength,
		"ctx":                       qc,
	})
}

// Watch supports the YouTube-style /watch?v=VIDEO_ID address, rendering the
// video page with the URL prefilled.
func (h *VideoHandler) Watch(c *gin.Context) {
	videoID := c.Query("v")

	videoURL := ""
	if videoID != "" {
		videoURL = models.WatchURL(videoID)
	}

	c.HTML(http.StatusOK, "video.tmpl", gin.H{
		"video_id":                  videoID,
		"video_url":                 videoURL,
		"default_transcript_length": fullTranscriptLength,
	})
}

// ProcessWatch handles the form submission of the watch page.
func (h *VideoHandler) ProcessWatch(c *gin.Context) {
	inputText := c.PostForm("input_text")

	qc := h.service.ProcessQuery(c.Request.Context(), inputText, fullTranscriptLength, false, "en")

	c.HTML(http.StatusOK, "video.tmpl", gin.H{
		"video_url":                 inputText,
		"default_transcript_length": displayTranscriptLength,
		"ctx":                       qc,
	})
}
