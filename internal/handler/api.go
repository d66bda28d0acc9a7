package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/db"
	"github.com/ytdoc/youtube-doc-service-go/internal/db/repository"
	"github.com/ytdoc/youtube-doc-service-go/internal/models"
	"github.com/ytdoc/youtube-doc-service-go/internal/service"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// ProcessRequest is the JSON API request body.
type ProcessRequest struct {
	URL                 string `json:"url" binding:"required"`
	MaxTranscriptLength int    `json:"max_transcript_length"`
	IncludeComments     bool   `json:"include_comments"`
	Language            string `json:"language"`
}

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	service   *service.DocumentService
	documents repository.DocumentRepository
}

// NewAPIHandler creates an APIHandler. documents may be nil when no
// database is configured.
func NewAPIHandler(svc *service.DocumentService, documents repository.DocumentRepository) *APIHandler {
	return &APIHandler{service: svc, documents: documents}
}

// Process runs the synchronous pipeline for a JSON request.
func (h *APIHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   "Invalid request payload: " + err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if req.MaxTranscriptLength == 0 {
		req.MaxTranscriptLength = fullTranscriptLength
	}
	if req.Language == "" {
		req.Language = "en"
	}

	qc := h.service.ProcessQuery(c.Request.Context(), req.URL, req.MaxTranscriptLength, req.IncludeComments, req.Language)
	if !qc.Result {
		c.JSON(http.StatusUnprocessableEntity, qc)
		return
	}

	c.JSON(http.StatusOK, qc)
}

// ListDocuments returns stored document records, newest first.
func (h *APIHandler) ListDocuments(c *gin.Context) {
	if h.documents == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document records are not enabled"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	docs, err := h.documents.ListDocuments(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Log.Error("failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// GetDocument returns one document record.
func (h *APIHandler) GetDocument(c *gin.Context) {
	if h.documents == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document records are not enabled"})
		return
	}

	videoID := c.Param("video_id")

	doc, err := h.documents.GetDocumentByVideoID(c.Request.Context(), videoID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		logger.Log.Error("failed to get document",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Health reports service liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}
