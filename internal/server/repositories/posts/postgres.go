package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	columns         = `id, title, slug, excerpt, content, category, tags, read_time, published, created_at, updated_at`
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{}
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category,
		(*dbx.StringList)(&p.Tags), &p.ReadTime, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) List(ctx context.Context, publishedOnly bool) ([]*models.Post, error) {
	query := `SELECT ` + columns + ` FROM blog_posts
		WHERE published OR NOT $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + columns + ` FROM blog_posts WHERE id = $1`

	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + columns + ` FROM blog_posts WHERE slug = $1`

	p, err := scanPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO blog_posts (title, slug, excerpt, content, category, tags, read_time, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content, post.Category,
		dbx.StringList(post.Tags), post.ReadTime, post.Published,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return post, nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		UPDATE blog_posts SET
			title = $1, slug = $2, excerpt = $3, content = $4, category = $5,
			tags = $6, read_time = $7, published = $8, updated_at = now()
		WHERE id = $9
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content, post.Category,
		dbx.StringList(post.Tags), post.ReadTime, post.Published, post.ID,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return post, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
