package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"safebite/internal/domain"
	"safebite/internal/port"
)

type labelDocumentRepo struct {
	db *sqlx.DB
}

// NewLabelDocumentRepo creates a new PostgreSQL-backed LabelDocumentRepository.
func NewLabelDocumentRepo(db *sqlx.DB) port.LabelDocumentRepository {
	return &labelDocumentRepo{db: db}
}

func (r *labelDocumentRepo) Create(ctx context.Context, doc *domain.LabelDocument) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO label_documents (id, owner_id, original_name, file_type, file_size,
		s3_bucket, s3_key, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.OwnerID, doc.OriginalName, doc.FileType, doc.FileSize,
		doc.S3Bucket, doc.S3Key, doc.ContentType, doc.Status, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("labelDocumentRepo.Create: %w", err)
	}
	return nil
}

func (r *labelDocumentRepo) UpdateStatus(ctx context.Context, ownerID, docID uuid.UUID, status domain.DocumentStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE label_documents SET status = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4",
		status, time.Now().UTC(), docID, ownerID)
	if err != nil {
		return fmt.Errorf("labelDocumentRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
