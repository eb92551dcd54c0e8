package ws

import (
	"sync"
)

// Registry is the single source of truth for "who is currently
// connected": live connection id -> authenticated player id. One entry
// per connection; a player with several devices holds several entries.
// The gateway is the only writer. Single-process by design; a shared
// store behind this interface is the extension point for scaling out.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]int64
}

func NewRegistry() *Registry {
	return &Registry{byConn: make(map[string]int64)}
}

// Put registers a connection as authenticated for a player. An already
// present connection id is overwritten, last writer wins; the caller
// logs that as a warning since it signals a lifecycle bug upstream.
func (r *Registry) Put(connID string, playerID int64) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced = r.byConn[connID]
	r.byConn[connID] = playerID
	return replaced
}

// Remove is idempotent; removing an absent id is a no-op.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, connID)
}

// Get authorizes subsequent event requests.
func (r *Registry) Get(connID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pid, ok := r.byConn[connID]
	return pid, ok
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// Snapshot copies the map for diagnostics; use sparingly.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.byConn))
	for k, v := range r.byConn {
		out[k] = v
	}
	return out
}
