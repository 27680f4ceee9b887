// Package services contains the server's business logic. Handlers call
// services; services talk to repositories through the RepositoryManager so
// that the same code runs with or without a transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes; longer passwords are rejected.
	maxPasswordLength = 72
)

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

// AuthService handles login, logout and administrator provisioning.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	guard       *auth.Guard
	tokens      *auth.TokenService
	hasher      *auth.Hasher
	logger      logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, guard *auth.Guard,
	tokens *auth.TokenService, hasher *auth.Hasher, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		guard:       guard,
		tokens:      tokens,
		hasher:      hasher,
		logger:      logger,
	}
}

// Login checks the credentials and issues an access token whose subject is
// the username. Bad credentials yield common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	id, err := s.guard.AuthenticateWithPassword(ctx, username, password)
	if err != nil {
		s.logger.Info(ctx, "login rejected", "username", username, "error", err)
		return nil, err
	}

	ttl := s.tokens.DefaultTTL()
	token, err := s.tokens.Issue(id.Username, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "login", "username", id.Username)
	return &AccessToken{Token: token, ExpiresIn: ttl}, nil
}

// Logout denylists the token the identity authenticated with until it
// expires. Expired denylist entries are purged in the same transaction.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity) error {
	if id.Token.ID == "" {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)
		if _, err := repo.PurgeExpired(ctx); err != nil {
			return err
		}
		return repo.Revoke(ctx, id.Token.ID, id.Token.ExpiresAt)
	})
}

// EnsureAdmin creates the administrator account unless it already exists.
// With an empty password nothing is created. The result reports whether a
// user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if password == "" {
		return false, nil
	}

	_, err := s.repomanager.Users(s.db).FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	if _, err := s.CreateAdmin(ctx, username, email, password); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateAdmin stores a new administrator with a hashed password.
func (s *AuthService) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, maxPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin user created", "username", u.Username)
	return u, nil
}
