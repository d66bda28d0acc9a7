package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// Client wraps the asynq client for enqueueing refresh tasks.
type Client struct {
	asynqClient *asynq.Client
}

// NewClient creates a queue client from a Redis URL.
func NewClient(redisURL string) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{asynqClient: asynq.NewClient(redisOpt)}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// EnqueueDocumentRefresh enqueues a refresh task scheduled for when the
// cached document URL expires.
func (c *Client) EnqueueDocumentRefresh(payload *RefreshDocumentPayload, after time.Duration) error {
	payloadBytes, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeRefreshDocument, payloadBytes)

	info, err := c.asynqClient.Enqueue(task,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
		asynq.ProcessIn(after),
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeRefreshDocument, payload.VideoID)),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// A refresh is already scheduled for this video.
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.Log.Info("enqueued document refresh",
		zap.String("videoId", payload.VideoID),
		zap.String("taskId", info.ID),
		zap.Duration("after", after),
	)

	return nil
}
