// Package httpapi is the HTTP transport of the portfolio server. It maps
// routes onto services and applies admission, authentication and the admin
// check in that order.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/ratelimit"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
)

// Guard authenticates bearer tokens and enforces the admin privilege.
type Guard interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	RequireAdmin(id auth.Identity) (auth.Identity, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.AccessToken, error)
	Logout(ctx context.Context, id auth.Identity) error
}

type ContentService interface {
	ListPosts(ctx context.Context, includeDrafts bool) ([]*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, p *models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error

	ListProjects(ctx context.Context) ([]*models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, p *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

type MessageService interface {
	Submit(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error)
	List(ctx context.Context) ([]*models.ContactMessage, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type MediaService interface {
	CreateUpload(ctx context.Context, uploadedBy, filename, contentType string) (*services.Upload, error)
	CompleteUpload(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Media, error)
	DownloadURL(ctx context.Context, id string) (string, error)
}

// Options configures the router builder.
type Options struct {
	Config   *config.Config
	Logger   logging.Logger
	Limiter  ratelimit.Checker
	Guard    Guard
	Auth     AuthService
	Content  ContentService
	Messages MessageService
	Media    MediaService

	// Now defaults to time.Now.
	Now func() time.Time
}

type handlers struct {
	Options
	logger logging.Logger
}

// Build constructs a gin engine with recovery, access logging, security
// headers, CORS and every API route registered.
func Build(opts Options) (*gin.Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("http router requires config")
	}
	if opts.Limiter == nil || opts.Guard == nil {
		return nil, errors.New("http router requires a limiter and a guard")
	}
	if opts.Auth == nil || opts.Content == nil || opts.Messages == nil || opts.Media == nil {
		return nil, errors.New("http router requires all services")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Config.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(accessLog(logger))
	engine.Use(securityHeaders())

	if err := engine.SetTrustedProxies(opts.Config.TrustedProxies); err != nil {
		return nil, err
	}

	if len(opts.Config.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     opts.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{Options: opts, logger: logger.With("module", "http")}
	h.register(engine)
	return engine, nil
}

func (h *handlers) register(engine *gin.Engine) {
	authenticated := authenticate(h.Guard, h.logger)
	admin := requireAdmin(h.Guard)
	mutation := admit(h.Limiter, ratelimit.AdminMutation, h.logger)

	engine.GET("/", h.root)
	engine.GET("/health", h.health)

	api := engine.Group("/api")
	api.GET("/posts", h.listPosts)
	api.GET("/posts/:id", h.getPost)
	api.GET("/posts/slug/:slug", h.getPostBySlug)
	api.GET("/projects", h.listProjects)
	api.GET("/projects/:id", h.getProject)
	api.POST("/contact", admit(h.Limiter, ratelimit.Contact, h.logger), h.submitContact)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", admit(h.Limiter, ratelimit.Login, h.logger), h.login)
	authGroup.GET("/me", authenticated, h.me)
	authGroup.POST("/logout", authenticated, h.logout)

	// Admission runs before authentication so that unauthenticated floods
	// are throttled too.
	adminGroup := api.Group("/admin")
	reads := adminGroup.Group("", authenticated, admin)
	writes := adminGroup.Group("", mutation, authenticated, admin)

	reads.GET("/posts", h.adminListPosts)
	writes.POST("/posts", h.createPost)
	writes.PUT("/posts/:id", h.updatePost)
	writes.DELETE("/posts/:id", h.deletePost)

	writes.POST("/projects", h.createProject)
	writes.PUT("/projects/:id", h.updateProject)
	writes.DELETE("/projects/:id", h.deleteProject)

	reads.GET("/messages", h.listMessages)
	writes.PATCH("/messages/:id/read", h.markMessageRead)
	writes.DELETE("/messages/:id", h.deleteMessage)

	reads.GET("/media", h.listMedia)
	writes.POST("/media", h.createUpload)
	writes.POST("/media/:id/complete", h.completeUpload)
	reads.GET("/media/:id/url", h.mediaURL)
}
