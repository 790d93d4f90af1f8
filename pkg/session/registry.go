package session

import (
	"context"
	"sync"
	"time"

	"github.com/sboosali/notegraph/pkg/errors"
)

// Registry holds live sessions in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	ttl      time.Duration
	ctx      context.Context
}

// NewRegistry returns an empty registry. ctx bounds background requests of
// every session it creates.
func NewRegistry(ctx context.Context, cfg Config, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		ttl:      ttl,
		ctx:      ctx,
	}
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	s := New(r.ctx, r.cfg, nil, r.ttl)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and extends its lifetime. A missing or expired
// session is a SESSION_NOT_FOUND error.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	if s.IsExpired() {
		delete(r.sessions, id)
		s.Close()
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	s.extend(r.ttl)
	return s, nil
}

// Delete removes a session and cancels its background requests.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of sessions, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup removes expired sessions, cancelling their background requests,
// and returns how many were removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
			s.Close()
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Cleanup(); n > 0 && r.cfg.Logger != nil {
				r.cfg.Logger.Debug("removed expired sessions", "count", n)
			}
		}
	}
}
