package ratelimit

import (
	"context"
	"time"
)

// Policy is one call site's limit: at most MaxRequests within Window.
// Name namespaces the client key so that policies do not share windows.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

var (
	Login         = Policy{Name: "login", MaxRequests: 5, Window: 15 * time.Minute}
	AdminMutation = Policy{Name: "admin", MaxRequests: 10, Window: 60 * time.Minute}
	Contact       = Policy{Name: "contact", MaxRequests: 3, Window: 60 * time.Minute}
	Health        = Policy{Name: "health", MaxRequests: 60, Window: time.Minute}
)

// Key builds the stored key for a client under this policy.
func (p Policy) Key(client string) string {
	if p.Name == "" {
		return client
	}
	return p.Name + ":" + client
}

// Decision is the outcome of a check. RetryAfter is set on rejection: the
// time until the oldest counted request leaves the window.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Checker is implemented by Limiter and RedisLimiter.
type Checker interface {
	Check(ctx context.Context, client string, p Policy) (Decision, error)
}
