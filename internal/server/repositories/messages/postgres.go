package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	query := `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`
	err := r.db.QueryRowContext(ctx, query, msg.Name, msg.Email, msg.Subject, msg.Message).
		Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, is_read, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
}

// exec runs a single-row statement; no matching row is common.ErrorNotFound.
func (r *PostgresRepository) exec(ctx context.Context, query string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
