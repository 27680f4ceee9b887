// Package projects stores portfolio projects.
package projects

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}
