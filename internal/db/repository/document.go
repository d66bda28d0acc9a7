// Package repository contains data access for document records.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ytdoc/youtube-doc-service-go/internal/db"
	"github.com/ytdoc/youtube-doc-service-go/internal/db/models"
)

// DocumentRepository defines operations for managing document records.
type DocumentRepository interface {
	// UpsertDocument creates a document record or updates the existing one
	// for the same video.
	UpsertDocument(ctx context.Context, doc *models.Document) error

	// GetDocumentByVideoID retrieves a single document record.
	GetDocumentByVideoID(ctx context.Context, videoID string) (*models.Document, error)

	// ListDocuments retrieves document records ordered by most recently
	// generated, with pagination.
	ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, videoID string) error
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) UpsertDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (video_id, title, channel, content_url, size_bytes, estimated_tokens, has_transcript, generated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (video_id) DO UPDATE
		SET title = EXCLUDED.title,
		    channel = EXCLUDED.channel,
		    content_url = EXCLUDED.content_url,
		    size_bytes = EXCLUDED.size_bytes,
		    estimated_tokens = EXCLUDED.estimated_tokens,
		    has_transcript = EXCLUDED.has_transcript,
		    generated_at = EXCLUDED.generated_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		doc.VideoID,
		doc.Title,
		doc.Channel,
		doc.ContentURL,
		doc.SizeBytes,
		doc.EstimatedTokens,
		doc.HasTranscript,
		doc.GeneratedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		return db.WrapError(err, "upsert document")
	}

	return nil
}

func (r *documentRepository) GetDocumentByVideoID(ctx context.Context, videoID string) (*models.Document, error) {
	query := `
		SELECT video_id, title, channel, content_url, size_bytes, estimated_tokens, has_transcript, generated_at, created_at, updated_at
		FROM documents
		WHERE video_id = $1
	`

	doc := &models.Document{}
	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&doc.VideoID,
		&doc.Title,
		&doc.Channel,
		&doc.ContentURL,
		&doc.SizeBytes,
		&doc.EstimatedTokens,
		&doc.HasTranscript,
		&doc.GeneratedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		return nil, db.WrapError(err, "get document by video id")
	}

	return doc, nil
}

func (r *documentRepository) ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT video_id, title, channel, content_url, size_bytes, estimated_tokens, has_transcript, generated_at, created_at, updated_at
		FROM documents
		ORDER BY generated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, db.WrapError(err, "list documents")
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.VideoID,
			&doc.Title,
			&doc.Channel,
			&doc.ContentURL,
			&doc.SizeBytes,
			&doc.EstimatedTokens,
			&doc.HasTranscript,
			&doc.GeneratedAt,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, db.WrapError(err, "scan document row")
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate document rows")
	}

	return docs, nil
}

func (r *documentRepository) DeleteDocument(ctx context.Context, videoID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE video_id = $1`, videoID)
	if err != nil {
		return db.WrapError(err, "delete document")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document: %w", db.ErrNotFound)
	}

	return nil
}
