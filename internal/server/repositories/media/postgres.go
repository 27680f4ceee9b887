// Package media keeps track of objects uploaded to the media bucket.
package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// PostgresRepository implements media bookkeeping over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending media row and fills ID, Status and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	query := `
		INSERT INTO media (storage_key, filename, content_type, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.StorageKey, m.Filename, m.ContentType, m.UploadedBy).
		Scan(&m.ID, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Get returns the media row with the given id or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Media, error) {
	query := ` SELECT id, storage_key, filename, content_type, status, uploaded_by, created_at FROM media
		WHERE id=$1
		`
	m := &models.Media{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.StorageKey, &m.Filename, &m.ContentType, &m.Status, &m.UploadedBy, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// List returns all media rows, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Media, error) {
	query := ` SELECT id, storage_key, filename, content_type, status, uploaded_by, created_at FROM media
		ORDER BY created_at DESC
		`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select media: %w", err)
	}
	defer rows.Close()

	result := []*models.Media{}
	for rows.Next() {
		var item models.Media
		if err := rows.Scan(&item.ID, &item.StorageKey, &item.Filename, &item.ContentType,
			&item.Status, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkUploaded sets status='completed'. Exactly one row must be affected;
// an unknown id is common.ErrorNotFound.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `update media set status='completed' where id=$1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}
