package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// Identity is the authenticated principal of a request.
type Identity struct {
	ID       string
	Username string
	Email    string
	IsAdmin  bool
	// Token is set when the identity came from a bearer token.
	Token Claims
}

// UserLookup finds a user by username and returns common.ErrorNotFound when
// there is none.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Denylist reports tokens revoked before their natural expiry.
type Denylist interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Guard resolves identities from bearer tokens or passwords and enforces the
// admin privilege. It is the only auth component that produces rejections.
type Guard struct {
	tokens   *TokenService
	hasher   *Hasher
	users    UserLookup
	denylist Denylist

	dummyOnce sync.Once
	dummyHash string
}

// NewGuard wires the guard. denylist may be nil when revocation is not used.
func NewGuard(tokens *TokenService, hasher *Hasher, users UserLookup, denylist Denylist) *Guard {
	return &Guard{tokens: tokens, hasher: hasher, users: users, denylist: denylist}
}

// Authenticate verifies tokenString and loads its subject. Every failure,
// including an unreachable user store, is reported as common.ErrorUnauthorized;
// store errors are wrapped so logs keep the cause.
func (g *Guard) Authenticate(ctx context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, common.ErrorUnauthorized
	}

	claims, ok := g.tokens.Verify(tokenString)
	if !ok {
		return Identity{}, common.ErrorUnauthorized
	}

	if g.denylist != nil && claims.ID != "" {
		revoked, err := g.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: denylist lookup: %w", common.ErrorUnauthorized, err)
		}
		if revoked {
			return Identity{}, common.ErrorUnauthorized
		}
	}

	user, err := g.lookup(ctx, claims.Subject)
	if err != nil {
		return Identity{}, err
	}

	id := identityOf(user)
	id.Token = claims
	return id, nil
}

// RequireAdmin passes admins through and rejects everyone else with
// common.ErrorForbidden. Call it only after Authenticate so that anonymous
// callers see 401, never 403.
func (g *Guard) RequireAdmin(id Identity) (Identity, error) {
	if !id.IsAdmin {
		return Identity{}, common.ErrorForbidden
	}
	return id, nil
}

// AuthenticateWithPassword checks username/password. An unknown user costs
// the same bcrypt comparison as a known one.
func (g *Guard) AuthenticateWithPassword(ctx context.Context, username, password string) (Identity, error) {
	user, err := g.lookup(ctx, username)
	if err != nil {
		g.hasher.Verify(password, g.dummy())
		return Identity{}, err
	}

	if !g.hasher.Verify(password, user.PasswordHash) {
		return Identity{}, common.ErrorUnauthorized
	}

	return identityOf(user), nil
}

func (g *Guard) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: user lookup: %w", common.ErrorUnauthorized, err)
	}
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

func (g *Guard) dummy() string {
	g.dummyOnce.Do(func() {
		g.dummyHash, _ = g.hasher.Hash("not-a-real-password")
	})
	return g.dummyHash
}

func identityOf(u *models.User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}
