package media

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	Get(ctx context.Context, id string) (*models.Media, error)
	List(ctx context.Context) ([]*models.Media, error)
	MarkUploaded(ctx context.Context, id string) error
}
