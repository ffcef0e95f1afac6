// Package ratelimit enforces a minimum interval between posts by the same user.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultWindow is the minimum time between two posts by one user.
const DefaultWindow = 10 * time.Minute

// Store keeps the last post time per user.
type Store interface {
	// LastPost returns the last post time of user; ok is false when the
	// user has never posted.
	LastPost(ctx context.Context, user string) (t time.Time, ok bool, err error)
	SetLastPost(ctx context.Context, user string, t time.Time) error
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed     bool
	NextAllowed time.Time
	// Pending is set when another post by the same user is still in flight.
	Pending bool
}

// Limiter checks and records posts against a Store.
type Limiter struct {
	store  Store
	window time.Duration
	now    func() time.Time
	log    *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a Limiter. A non-positive window means DefaultWindow and a nil
// logger is silent.
func New(store Store, window time.Duration, log *slog.Logger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Limiter{
		store:   store,
		window:  window,
		now:     time.Now,
		log:     log,
		pending: make(map[string]struct{}),
	}
}

// Window returns the configured interval.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Check reports whether user may post now. Store failures allow the post.
func (l *Limiter) Check(ctx context.Context, user string) Decision {
	last, ok, err := l.store.LastPost(ctx, user)
	if err != nil {
		l.log.Warn("rate limit lookup failed, allowing post", "user", user, "error", err)
		return Decision{Allowed: true}
	}
	if !ok {
		return Decision{Allowed: true}
	}
	if next := last.Add(l.window); l.now().Before(next) {
		return Decision{Allowed: false, NextAllowed: next}
	}
	return Decision{Allowed: true}
}

// Reserve is Check plus a per-user slot. While the slot is held, further
// Reserve calls for user are refused with Pending set, so two submissions
// racing through rendering and publishing cannot both pass. When the
// decision allows the post the caller must call release once it has
// recorded the post or given up; release is idempotent. A refused decision
// holds nothing and its release is a no-op.
func (l *Limiter) Reserve(ctx context.Context, user string) (d Decision, release func()) {
	l.mu.Lock()
	if _, busy := l.pending[user]; busy {
		l.mu.Unlock()
		return Decision{Pending: true, NextAllowed: l.now().Add(l.window)}, func() {}
	}
	l.pending[user] = struct{}{}
	l.mu.Unlock()

	release = sync.OnceFunc(func() {
		l.mu.Lock()
		delete(l.pending, user)
		l.mu.Unlock()
	})
	if d = l.Check(ctx, user); !d.Allowed {
		release()
		return d, func() {}
	}
	return d, release
}

// Record stores now as user's last post time.
func (l *Limiter) Record(ctx context.Context, user string) error {
	return l.store.SetLastPost(ctx, user, l.now())
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store. Safe for concurrent access.
type MemoryStore struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[string]time.Time)}
}

func (s *MemoryStore) LastPost(ctx context.Context, user string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.last[user]
	return t, ok, nil
}

func (s *MemoryStore) SetLastPost(ctx context.Context, user string, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[user] = t
	return nil
}
