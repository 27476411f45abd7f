package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/engine"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// Session owns one upload-and-analyze workspace: the raw entries plus the
// latest full statement build. Statements are replaced wholesale on every
// reprocess; the registry lock is never held during computation.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Files    []string
	Entries  []domain.JournalEntry
	Analysis *engine.Analysis
}

// Registry is an in-memory session store with TTL eviction.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry evicting sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new empty session and returns it.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now(),
		UpdatedAt: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}

// Get returns a snapshot of the session for id. The copy is taken under
// the read lock; Update replaces Entries and Analysis wholesale, so a
// snapshot stays internally consistent while an upload reprocesses the
// session concurrently.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	snapshot := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Files:     append([]string(nil), s.Files...),
		Entries:   s.Entries,
		Analysis:  s.Analysis,
	}
	return snapshot, nil
}

// Update stores new entries and their analysis under id, appending the
// originating file name to the session history.
func (r *Registry) Update(id string, file string, entries []domain.JournalEntry, analysis *engine.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if file != "" {
		s.Files = append(s.Files, file)
	}
	s.Entries = entries
	s.Analysis = analysis
	s.UpdatedAt = r.now()
	return nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictExpired removes sessions idle beyond the TTL and returns how many
// were dropped.
func (r *Registry) evictExpired() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartCleanup launches the periodic eviction sweep. It stops when ctx is
// cancelled.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		logger := zerolog.Ctx(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.evictExpired(); n > 0 {
					logger.Info().Int("evicted", n).Msg("session cleanup")
				}
			}
		}
	}()
}
