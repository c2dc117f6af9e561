// file: internal/session/registry.go
// version: 1.1.0
// guid: b4b3ce77-6c46-4f3d-a0b7-d6b587cec637

package session

import (
	"errors"
	"time"

	"github.com/jdfalk/medication-identifier/internal/cache"
	"github.com/jdfalk/medication-identifier/internal/metrics"
)

// DefaultTTL is how long an idle session survives before eviction.
const DefaultTTL = 15 * time.Minute

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds live capture sessions in memory. Abandoned sessions
// expire via the TTL cache; nothing is persisted.
type Registry struct {
	sessions *cache.Cache[*Session]
}

// NewRegistry creates a registry with the given idle TTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{sessions: cache.New[*Session](ttl)}
}

// Create starts a new session and registers it.
func (r *Registry) Create() (*Session, error) {
	s, err := NewSession()
	if err != nil {
		return nil, err
	}
	r.sessions.Set(s.ID, s)
	metrics.SetActiveSessions(r.sessions.Len())
	return s, nil
}

// Get returns a live session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Touch refreshes a session's eviction deadline.
func (r *Registry) Touch(id string) error {
	s, ok := r.sessions.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	r.sessions.Set(id, s)
	return nil
}

// Remove discards a session. Called after identify consumes its
// signals.
func (r *Registry) Remove(id string) {
	r.sessions.Delete(id)
	metrics.SetActiveSessions(r.sessions.Len())
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
