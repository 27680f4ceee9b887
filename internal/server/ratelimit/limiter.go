package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	hits   []time.Time
	length time.Duration
}

// Limiter is the in-memory sliding-window limiter. The zero value is not
// usable; construct with NewLimiter.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records a request from client under p unless the client already made
// p.MaxRequests requests within p.Window, in which case it is rejected and
// not recorded.
//
// Every call prunes all tracked keys, each by its own window, so memory is
// bounded by recent traffic at the cost of O(tracked keys) per call. Keys
// whose windows empty out are dropped. That is fine for a low-traffic site;
// a busier one wants lazy per-key pruning or RedisLimiter.
func (l *Limiter) Check(_ context.Context, client string, p Policy) (Decision, error) {
	key := p.Key(client)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if w, ok := l.windows[key]; ok {
		w.length = p.Window
	}
	l.prune(now)

	w, ok := l.windows[key]
	if !ok {
		w = &window{length: p.Window}
		l.windows[key] = w
	}

	if len(w.hits) >= p.MaxRequests {
		if len(w.hits) == 0 {
			delete(l.windows, key)
			return Decision{Allowed: false}, nil
		}
		return Decision{Allowed: false, RetryAfter: w.hits[0].Add(p.Window).Sub(now)}, nil
	}

	w.hits = append(w.hits, now)
	return Decision{Allowed: true}, nil
}

// prune drops every timestamp at or before now - window for each key.
// Must be called with l.mu held.
func (l *Limiter) prune(now time.Time) {
	for key, w := range l.windows {
		cutoff := now.Add(-w.length)
		i := 0
		for i < len(w.hits) && !w.hits[i].After(cutoff) {
			i++
		}
		if i == len(w.hits) {
			delete(l.windows, key)
			continue
		}
		if i > 0 {
			w.hits = append(w.hits[:0], w.hits[i:]...)
		}
	}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
