package models

import "time"

// RevokedToken is a denylist entry; it is meaningless after ExpiresAt.
type RevokedToken struct {
	TokenID   string
	ExpiresAt time.Time
}
