package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// Regenerator rebuilds and republishes the document for a video.
type Regenerator interface {
	Regenerate(ctx context.Context, videoID string, maxTranscriptLength int, includeComments bool, language string) error
}

// RefreshHandler handles document refresh tasks.
type RefreshHandler struct {
	regenerator Regenerator
}

// NewRefreshHandler creates a refresh task handler.
func NewRefreshHandler(regenerator Regenerator) *RefreshHandler {
	return &RefreshHandler{regenerator: regenerator}
}

// ProcessTask implements asynq.Handler.
func (h *RefreshHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalRefreshDocumentPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	logger.Log.Info("processing document refresh",
		zap.String("videoId", payload.VideoID),
	)

	if err := h.regenerator.Regenerate(ctx, payload.VideoID, payload.MaxTranscriptLength, payload.IncludeComments, payload.Language); err != nil {
		return fmt.Errorf("regenerate document %s: %w", payload.VideoID, err)
	}

	return nil
}

// Server processes refresh tasks from the Redis-backed queue.
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// NewServer creates a task processing server.
func NewServer(redisURL string, concurrency int, handler *RefreshHandler) (*Server, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 10,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Log.Error("task failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(TypeRefreshDocument, handler)

	return &Server{asynqServer: srv, mux: mux}, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	return s.asynqServer.Run(s.mux)
}

// Shutdown gracefully stops task processing.
func (s *Server) Shutdown() {
	s.asynqServer.Shutdown()
}
