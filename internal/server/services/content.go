package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
)

// Revalidator tells the front-end that pages built from a content tag are stale.
type Revalidator interface {
	Revalidate(ctx context.Context, tag string) error
}

// ContentService manages blog posts and projects. Every successful mutation
// triggers a best-effort revalidation of the matching front-end tag.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	revalidator Revalidator
	logger      logging.Logger
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager, r Revalidator, logger logging.Logger) *ContentService {
	return &ContentService{
		db:          db,
		repomanager: m,
		revalidator: r,
		logger:      logger,
	}
}

// ListPosts returns posts newest first; drafts only with includeDrafts.
func (s *ContentService) ListPosts(ctx context.Context, includeDrafts bool) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).List(ctx, !includeDrafts)
}

// GetPost returns a published post. Drafts are reported as not found.
func (s *ContentService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.repomanager.Posts(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

// GetPostBySlug is GetPost keyed by slug.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.repomanager.Posts(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (s *ContentService) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	if err := preparePost(p); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Posts(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.revalidate(ctx, common.TagBlogPosts)
	return out, nil
}

func (s *ContentService) UpdatePost(ctx context.Context, id int64, p *models.Post) (*models.Post, error) {
	if err := preparePost(p); err != nil {
		return nil, err
	}
	p.ID = id
	out, err := s.repomanager.Posts(s.db).Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.revalidate(ctx, common.TagBlogPosts)
	return out, nil
}

func (s *ContentService) DeletePost(ctx context.Context, id int64) error {
	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.revalidate(ctx, common.TagBlogPosts)
	return nil
}

func (s *ContentService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).List(ctx)
}

func (s *ContentService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return s.repomanager.Projects(s.db).Get(ctx, id)
}

func (s *ContentService) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := prepareProject(p); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Projects(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.revalidate(ctx, common.TagProjects)
	return out, nil
}

func (s *ContentService) UpdateProject(ctx context.Context, id int64, p *models.Project) (*models.Project, error) {
	if err := prepareProject(p); err != nil {
		return nil, err
	}
	p.ID = id
	out, err := s.repomanager.Projects(s.db).Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.revalidate(ctx, common.TagProjects)
	return out, nil
}

func (s *ContentService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.repomanager.Projects(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.revalidate(ctx, common.TagProjects)
	return nil
}

// revalidate never fails the caller; the front-end catches up on its own
// cache expiry if the webhook is down.
func (s *ContentService) revalidate(ctx context.Context, tag string) {
	if s.revalidator == nil {
		return
	}
	if err := s.revalidator.Revalidate(context.WithoutCancel(ctx), tag); err != nil {
		s.logger.Warn(ctx, "revalidation failed", "tag", tag, "error", err)
	}
}

func preparePost(p *models.Post) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if !validSlug(p.Slug) {
		return fmt.Errorf("%w: slug must be lower-case letters, digits and hyphens", common.ErrorValidation)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

func prepareProject(p *models.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Demo != nil && strings.TrimSpace(*p.Demo) == "" {
		p.Demo = nil
	}
	return nil
}
