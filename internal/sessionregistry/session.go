// Package sessionregistry tracks the cancellation state of in-flight
// browser-agent runs. A Session carries no messages — just an id and a
// cooperative stop flag that the owning AgentLoop polls between steps.
package sessionregistry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is one active (or recently completed) agent run.
type Session struct {
	ID        string
	CreatedAt time.Time

	stopRequested atomic.Bool
}

// RequestStop sets the cooperative stop flag. Safe to call more than once.
func (s *Session) RequestStop() {
	s.stopRequested.Store(true)
}

// StopRequested reports whether RequestStop has been called.
func (s *Session) StopRequested() bool {
	return s.stopRequested.Load()
}

// Registry is a process-wide, thread-safe sessionId → Session map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{sessions: map[string]*Session{}}
}

// Create allocates a fresh Session with a new UUID and registers it.
func (r *Registry) Create() *Session {
	s := &Session{ID: uuid.NewString(), CreatedAt: time.Now()}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id, or (nil, false) if unknown.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Stop requests cooperative cancellation of the named session. Reports
// whether the session existed.
func (r *Registry) Stop(id string) bool {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	s.RequestStop()
	return true
}

// StopAll requests cancellation of every currently registered session and
// returns how many were signaled.
func (r *Registry) StopAll() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.RequestStop()
	}
	return len(r.sessions)
}

// Remove unregisters a session. Called by the gateway a short grace period
// after a run's event stream has finished flushing.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// ListActive returns the ids of all currently registered sessions.
func (r *Registry) ListActive() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
