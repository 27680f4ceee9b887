package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/media"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/messages"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/posts"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/projects"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	Posts(db dbx.DBTX) posts.Repository
	Projects(db dbx.DBTX) projects.Repository
	Messages(db dbx.DBTX) messages.Repository
	Media(db dbx.DBTX) media.Repository
}
