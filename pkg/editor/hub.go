package editor

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/twpics/pkg/imageload"
)

const (
	// DefaultIdleTimeout is how long an untouched session is kept.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultMaxSessions caps the number of live sessions. The least
	// recently used session is evicted to make room.
	DefaultMaxSessions = 256

	sweepInterval = time.Minute
)

// HubOptions configures a Hub.
type HubOptions struct {
	Renderer    Renderer
	Limits      imageload.Limits
	IdleTimeout time.Duration
	MaxSessions int
}

// Hub owns the editing sessions of all connected browsers.
type Hub struct {
	opts HubOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates an empty hub.
func NewHub(opts HubOptions) *Hub {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Hub{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session with the given id.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, or a new session with a fresh
// id when id is empty or unknown. Callers persist the returned session's
// ID.
func (h *Hub) GetOrCreate(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[id]; ok && id != "" {
		return s
	}

	if len(h.sessions) >= h.opts.MaxSessions {
		h.evictOldestLocked()
	}

	s := NewSession(uuid.NewString(), h.opts.Renderer, h.opts.Limits)
	h.sessions[s.ID] = s
	slog.Debug("editor session created", "session", s.ID, "sessions", len(h.sessions))
	return s
}

// Remove closes and forgets a session.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// PruneIdle removes sessions not used within the idle timeout.
func (h *Hub) PruneIdle(now time.Time) int {
	h.mu.Lock()
	var stale []*Session
	for id, s := range h.sessions {
		if now.Sub(s.IdleSince()) <= h.opts.IdleTimeout {
			continue
		}
		delete(h.sessions, id)
		stale = append(stale, s)
	}
	h.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		slog.Info("pruned idle editor sessions", "count", len(stale))
	}
	return len(stale)
}

// Run prunes idle sessions until ctx is done, then closes every session.
func (h *Hub) Run(ctx context.Context) error {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return nil
		case now := <-t.C:
			h.PruneIdle(now)
		}
	}
}

// Close closes and removes every session.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

func (h *Hub) evictOldestLocked() {
	type entry struct {
		id   string
		seen time.Time
	}
	entries := make([]entry, 0, len(h.sessions))
	for id, s := range h.sessions {
		entries = append(entries, entry{id: id, seen: s.IdleSince()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seen.Before(entries[j].seen) })

	for len(h.sessions) >= h.opts.MaxSessions && len(entries) > 0 {
		e := entries[0]
		entries = entries[1:]
		s := h.sessions[e.id]
		delete(h.sessions, e.id)
		s.Close()
		slog.Info("evicted editor session", "session", e.id)
	}
}
