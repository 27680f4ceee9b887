// Package revokedtokens declares the token denylist: ids of access tokens
// that were logged out before they expired.
package revokedtokens

import (
	"context"
	"time"
)

// Repository records and queries revoked token ids.
type Repository interface {
	// Revoke denylists tokenID until expiresAt. Revoking an already revoked
	// id is not an error.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether tokenID is denylisted and not yet expired.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// PurgeExpired removes entries whose tokens have expired anyway and
	// returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
