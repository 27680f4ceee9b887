package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/media"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/messages"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/posts"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/projects"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

// --- users ---

type fakeUsers struct {
	mu        sync.Mutex
	byName    map[string]*models.User
	findErr   error
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "u-" + u.Username
	u.CreatedAt = time.Now()
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// --- revoked tokens ---

type fakeRevoked struct {
	revoked   map[string]time.Time
	purges    int
	revokeErr error
	purgeErr  error
}

func newFakeRevoked() *fakeRevoked { return &fakeRevoked{revoked: map[string]time.Time{}} }

func (f *fakeRevoked) Revoke(_ context.Context, id string, exp time.Time) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked[id] = exp
	return nil
}

func (f *fakeRevoked) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := f.revoked[id]
	return ok, nil
}

func (f *fakeRevoked) PurgeExpired(context.Context) (int64, error) {
	f.purges++
	return 0, f.purgeErr
}

// --- posts ---

type fakePosts struct {
	items  map[int64]*models.Post
	nextID int64
	err    error
}

func newFakePosts(ps ...*models.Post) *fakePosts {
	f := &fakePosts{items: map[int64]*models.Post{}, nextID: 1}
	for _, p := range ps {
		f.items[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakePosts) List(_ context.Context, publishedOnly bool) ([]*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Post{}
	for _, p := range f.items {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakePosts) Get(_ context.Context, id int64) (*models.Post, error) {
	if p, ok := f.items[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	for _, p := range f.items {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, other := range f.items {
		if other.Slug == p.Slug {
			return nil, common.ErrorAlreadyExists
		}
	}
	p.ID = f.nextID
	f.nextID++
	f.items[p.ID] = p
	return p, nil
}

func (f *fakePosts) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.items[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

// --- projects ---

type fakeProjects struct {
	items  map[int64]*models.Project
	nextID int64
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{items: map[int64]*models.Project{}, nextID: 1}
}

func (f *fakeProjects) List(context.Context) ([]*models.Project, error) {
	out := []*models.Project{}
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, id int64) (*models.Project, error) {
	if p, ok := f.items[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	p.ID = f.nextID
	f.nextID++
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) (*models.Project, error) {
	if _, ok := f.items[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

// --- messages ---

type fakeMessages struct {
	items  []*models.ContactMessage
	read   map[int64]bool
	nextID int64
}

func newFakeMessages() *fakeMessages { return &fakeMessages{read: map[int64]bool{}, nextID: 1} }

func (f *fakeMessages) Create(_ context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	m.ID = f.nextID
	f.nextID++
	f.items = append(f.items, m)
	return m, nil
}

func (f *fakeMessages) List(context.Context) ([]*models.ContactMessage, error) {
	return f.items, nil
}

func (f *fakeMessages) find(id int64) int {
	for i, m := range f.items {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeMessages) MarkRead(_ context.Context, id int64) error {
	i := f.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.items[i].IsRead = true
	return nil
}

func (f *fakeMessages) Delete(_ context.Context, id int64) error {
	i := f.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

// --- media ---

type fakeMedia struct {
	items     map[string]*models.Media
	createErr error
}

func newFakeMedia() *fakeMedia { return &fakeMedia{items: map[string]*models.Media{}} }

func (f *fakeMedia) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	m.ID = "m-" + m.Filename
	m.Status = models.MediaPending
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeMedia) Get(_ context.Context, id string) (*models.Media, error) {
	if m, ok := f.items[id]; ok {
		return m, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMedia) List(context.Context) ([]*models.Media, error) {
	out := []*models.Media{}
	for _, m := range f.items {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMedia) MarkUploaded(_ context.Context, id string) error {
	m, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.Status = models.MediaCompleted
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users    *fakeUsers
	revoked  *fakeRevoked
	posts    *fakePosts
	projects *fakeProjects
	messages *fakeMessages
	media    *fakeMedia
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    newFakeUsers(),
		revoked:  newFakeRevoked(),
		posts:    newFakePosts(),
		projects: newFakeProjects(),
		messages: newFakeMessages(),
		media:    newFakeMedia(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository { return m.revoked }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository                 { return m.posts }
func (m *fakeRepoManager) Projects(dbx.DBTX) projects.Repository           { return m.projects }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository           { return m.messages }
func (m *fakeRepoManager) Media(dbx.DBTX) media.Repository                 { return m.media }

// --- revalidator ---

type fakeRevalidator struct {
	tags []string
	err  error
}

func (f *fakeRevalidator) Revalidate(_ context.Context, tag string) error {
	f.tags = append(f.tags, tag)
	return f.err
}
