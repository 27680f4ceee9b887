package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/ratelimit"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
)

var errBoom = errors.New("boom")

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeAuth struct {
	mu        sync.Mutex
	loginErr  error
	loggedOut []auth.Identity
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (*services.AccessToken, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AccessToken{Token: "tok-" + username, ExpiresIn: 30 * time.Minute}, nil
}

func (f *fakeAuth) Logout(_ context.Context, id auth.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, id)
	return nil
}

type fakeContent struct {
	mu            sync.Mutex
	posts         map[int64]*models.Post
	projects      map[int64]*models.Project
	nextID        int64
	includeDrafts []bool
	err           error
}

func newFakeContent() *fakeContent {
	return &fakeContent{posts: map[int64]*models.Post{}, projects: map[int64]*models.Project{}}
}

func (f *fakeContent) ListPosts(_ context.Context, includeDrafts bool) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.includeDrafts = append(f.includeDrafts, includeDrafts)
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Post
	for _, p := range f.posts {
		if includeDrafts || p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeContent) GetPost(_ context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || !p.Published {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeContent) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug && p.Published {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContent) CreatePost(_ context.Context, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	f.nextID++
	p.ID = f.nextID
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeContent) UpdatePost(_ context.Context, id int64, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = id
	f.posts[id] = p
	return p, nil
}

func (f *fakeContent) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeContent) ListProjects(context.Context) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeContent) GetProject(_ context.Context, id int64) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeContent) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeContent) UpdateProject(_ context.Context, id int64, p *models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = id
	f.projects[id] = p
	return p, nil
}

func (f *fakeContent) DeleteProject(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeMessages struct {
	mu        sync.Mutex
	submitted []*models.ContactMessage
	read      []int64
	submitErr error
}

func (f *fakeMessages) Submit(_ context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	m.ID = int64(len(f.submitted) + 1)
	m.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.submitted = append(f.submitted, m)
	return m, nil
}

func (f *fakeMessages) List(context.Context) ([]*models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, id)
	return nil
}

func (f *fakeMessages) Delete(context.Context, int64) error { return nil }

type fakeMedia struct {
	mu         sync.Mutex
	uploadedBy []string
	completed  []string
	urlErr     error
}

func (f *fakeMedia) CreateUpload(_ context.Context, uploadedBy, filename, contentType string) (*services.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadedBy = append(f.uploadedBy, uploadedBy)
	return &services.Upload{
		Media: &models.Media{
			ID:          "6f1c1d6e-2b55-4c4e-9b1a-0d3c8f1f2a10",
			StorageKey:  "media/2026/01/02/x.png",
			Filename:    filename,
			ContentType: contentType,
			Status:      models.MediaPending,
			UploadedBy:  uploadedBy,
		},
		UploadURL: "https://bucket.example/put",
		ExpiresIn: 15 * time.Minute,
	}, nil
}

func (f *fakeMedia) CompleteUpload(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeMedia) List(context.Context) ([]*models.Media, error) { return nil, nil }

func (f *fakeMedia) DownloadURL(context.Context, string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://bucket.example/get", nil
}

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string, ratelimit.Policy) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errBoom
}
