// Package messages stores contact form submissions.
package messages

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error)
	// List returns messages newest first.
	List(ctx context.Context) ([]*models.ContactMessage, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
