package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DonatHalimi/OmniShop/internal/store"
)

// Options configures a Registry.
type Options struct {
	// IdleTTL is how long an untouched session is kept. Zero keeps sessions
	// until the process exits.
	IdleTTL time.Duration
	// SortDelay is passed to every list view.
	SortDelay time.Duration
	// OnChange, when set, observes every store change of every session.
	OnChange store.Listener
}

// Registry maps session ids to sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, creating it with empty stores on
// first use, and marks it as recently seen.
func (r *Registry) GetOrCreate(id string) *Session {
	now := r.now()

	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(now)
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.touch(now)
		return s
	}
	s = newSession(id, r.opts.SortDelay, r.observe, now)
	r.sessions[id] = s
	sessionsActive.Set(float64(len(r.sessions)))
	r.logger.Debug("session created", slog.String("session_id", id))
	return s
}

// lookup returns the session for id without creating or touching it.
func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle drops sessions not seen for longer than IdleTTL and returns how
// many were dropped.
func (r *Registry) EvictIdle() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.opts.IdleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		sessionsEvicted.Add(float64(removed))
		sessionsActive.Set(float64(len(r.sessions)))
		r.logger.Info("evicted idle sessions",
			slog.Int("evicted", removed),
			slog.Int("remaining", len(r.sessions)),
		)
	}
	return removed
}

// Run evicts idle sessions periodically until ctx is cancelled. With no
// IdleTTL it just waits for ctx.
func (r *Registry) Run(ctx context.Context) {
	if r.opts.IdleTTL <= 0 {
		<-ctx.Done()
		return
	}

	interval := r.opts.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

func (r *Registry) observe(c store.Change) {
	storeMutationsTotal.WithLabelValues(c.Store, string(c.Op)).Inc()
	if r.opts.OnChange != nil {
		r.opts.OnChange(c)
	}
}
