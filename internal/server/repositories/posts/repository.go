// Package posts stores blog posts.
package posts

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	// List returns posts newest first. With publishedOnly, drafts are left out.
	List(ctx context.Context, publishedOnly bool) ([]*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	// Create fills ID and timestamps. A taken slug yields common.ErrorAlreadyExists.
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	// Update overwrites every editable field of the post with post.ID.
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}
