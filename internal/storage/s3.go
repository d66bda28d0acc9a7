// Package storage holds the generated-document object store and the URL
// result cache.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/internal/config"
	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// objectKeyPrefix is the bucket prefix for generated video documents.
const objectKeyPrefix = "docs/youtube"

// DocumentStore publishes generated markdown documents and answers whether
// a video already has one.
type DocumentStore interface {
	// Exists reports whether a document for videoID is already stored and
	// returns its public URL when it is.
	Exists(ctx context.Context, videoID string) (string, bool, error)

	// Put stores the document for videoID and returns its public URL.
	Put(ctx context.Context, videoID string, content string) (string, error)
}

// S3Store is a DocumentStore backed by S3-compatible object storage.
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	useSSL    bool
	endpoint  string
}

// NewS3Store creates a document store from storage configuration. Returns
// an error when the bucket is not configured so callers can run without
// publishing.
func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		useSSL:    cfg.UseSSL,
		endpoint:  cfg.Endpoint,
	}, nil
}

// ObjectKey returns the bucket key for a video's document.
func ObjectKey(videoID string) string {
	return fmt.Sprintf("%s/%s.md", objectKeyPrefix, videoID)
}

func (s *S3Store) Exists(ctx context.Context, videoID string) (string, bool, error) {
	key := ObjectKey(videoID)

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat document %s: %w", key, err)
	}

	return s.URLFor(videoID), true, nil
}

func (s *S3Store) Put(ctx context.Context, videoID string, content string) (string, error) {
	key := ObjectKey(videoID)
	reader := bytes.NewReader([]byte(content))

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	if err != nil {
		return "", fmt.Errorf("put document %s: %w", key, err)
	}

	logger.Log.Info("document stored",
		zap.String("videoId", videoID),
		zap.String("key", key),
		zap.Int("size", len(content)),
	)

	return s.URLFor(videoID), nil
}

// URLFor builds the public URL of a video's document. A configured
// PublicURL (CDN or reverse proxy) takes precedence over the raw endpoint.
func (s *S3Store) URLFor(videoID string) string {
	key := ObjectKey(videoID)
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}
