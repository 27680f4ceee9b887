// Package auth implements credential hashing, bearer token issuance and
// verification, and the access guard that resolves the caller's identity.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when Issue is called with a non-positive ttl.
const DefaultTokenTTL = 30 * time.Minute

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	ID        string
	ExpiresAt time.Time
}

// TokenService issues and verifies HMAC-signed JWTs. It holds no per-token
// state; a token is valid iff its signature checks out and exp is in the future.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithDefaultTTL overrides DefaultTokenTTL.
func WithDefaultTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// NewTokenService validates the secret and algorithm name. Only HMAC methods
// (HS256, HS384, HS512) are accepted.
func NewTokenService(secret []byte, algorithm string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrConfiguration)
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported signing algorithm %q", common.ErrConfiguration, algorithm)
	}

	s := &TokenService{
		secret:     secret,
		method:     method,
		defaultTTL: DefaultTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL is the lifetime used when Issue gets ttl <= 0.
func (s *TokenService) DefaultTTL() time.Duration { return s.defaultTTL }

// Issue signs a token for subject that expires ttl from now.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()

	token := jwt.NewWithClaims(s.method, jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	return token.SignedString(s.secret)
}

// Verify returns the token's claims and true when the token is well formed,
// signed with our secret and algorithm, carries a subject and has not expired.
// There is no clock-skew leeway. Segments must be canonical base64url, so the
// padding bits of the last signature character cannot be altered.
func (s *TokenService) Verify(tokenString string) (Claims, bool) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil || !token.Valid {
		return Claims{}, false
	}
	if claims.Subject == "" {
		return Claims{}, false
	}

	return Claims{
		Subject:   claims.Subject,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, true
}
