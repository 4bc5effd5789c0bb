package appstate

import (
	"sync"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/google/uuid"
)

// Registry holds the open wizard sessions of all owners.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Store
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*Store),
		metrics:  m,
		now:      time.Now,
	}
}

// Add registers a store and returns its session id. The store's transitions
// are counted in the registry metrics.
func (r *Registry) Add(store *Store) string {
	store.Subscribe(func(snap Snapshot) {
		r.metrics.WizardTransition(string(snap.View), string(snap.GateStatus))
	})

	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = store
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return id
}

// Get returns the session of an owner. Sessions of other owners are reported as missing.
func (r *Registry) Get(ownerID, sessionID string) (*Store, error) {
	r.mu.RLock()
	store, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || store.OwnerID() != ownerID {
		return nil, ErrSessionNotFound
	}
	return store, nil
}

func (r *Registry) Remove(ownerID, sessionID string) error {
	r.mu.Lock()
	store, ok := r.sessions[sessionID]
	if !ok || store.OwnerID() != ownerID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return nil
}

// Sweep closes sessions idle for longer than maxIdle and returns how many were removed.
// In-progress gates of swept sessions are discarded.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	removed := 0
	for id, store := range r.sessions {
		if store.LastAccess().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
