package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	DefaultCapacity = 9
	DefaultTTL      = 10 * time.Minute
)

// Options configures a [Registry].
type Options struct {
	Capacity int           // Delivery channel buffer; must cover one run's events
	TTL      time.Duration // Age after which an unattached session is swept
	Logger   *log.Logger
}

// Registry maps session IDs to sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// NewRegistry creates an empty [Registry].
func NewRegistry(opts Options) *Registry {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Registry{
		sessions: make(map[string]*Session),
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		now:      time.Now,
		logger:   opts.Logger,
	}
}

// Create returns the session for id, creating it if needed. The boolean is true when a new session was created.
func (r *Registry) Create(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := newSession(id, r.capacity, r.now())
	r.sessions[id] = s
	return s, true
}

// Lookup returns the session for id.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove deletes the session for id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions older than the TTL that no consumer is attached to and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, s := range r.sessions {
		if s.Attached() || s.CreatedAt.After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
		r.logger.Debug("swept session", "session_id", id, "started", s.Started(), "finished", s.Finished())
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("swept abandoned sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}
