package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps a user to the set of that user's currently open sessions.
// Multiple sessions per user are normal (multiple devices or tabs). All
// methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]map[*Client]struct{})}
}

func (r *Registry) Add(userID uuid.UUID, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sessions[userID]
	if !ok {
		set = make(map[*Client]struct{})
		r.sessions[userID] = set
	}
	set[c] = struct{}{}
}

// Remove reports whether the session was actually registered, so callers
// can make teardown idempotent (close the send channel exactly once).
func (r *Registry) Remove(userID uuid.UUID, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.sessions, userID)
	}
	return true
}

// Get returns a snapshot of the user's open sessions; empty slice when the
// user has none.
func (r *Registry) Get(userID uuid.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.sessions[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

// All returns a snapshot of every open session across all users.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0)
	for _, set := range r.sessions {
		for c := range set {
			clients = append(clients, c)
		}
	}
	return clients
}

// Count returns the total number of open sessions across all users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.sessions {
		n += len(set)
	}
	return n
}
