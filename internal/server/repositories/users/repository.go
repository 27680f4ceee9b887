// Package users stores site accounts. Only administrators exist today; the
// schema keeps the flag so that non-admin accounts are representable.
package users

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A duplicate
	// username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindByUsername returns common.ErrorNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}
