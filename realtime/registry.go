package realtime

import (
	"sync"
	"time"
)

// PresenceEntry maps a durable identity (user id or taxi id) to its live
// connection. At most one entry per identity; last join wins.
type PresenceEntry struct {
	ConnID   string
	Role     string
	JoinedAt time.Time
}

// Registry is the presence map. It keeps a reverse index from connection id
// to the identities it registered, so a disconnect purge is O(1) in the
// number of active connections.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]PresenceEntry
	byConn  map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]PresenceEntry),
		byConn:  make(map[string]map[string]struct{}),
	}
}

// Register inserts or overwrites the presence entry for identity. An
// overwrite detaches the identity from the previous connection's reverse
// index, so the stale connection's later disconnect cannot purge the new
// entry.
func (r *Registry) Register(identity, connID, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.entries[identity]; ok && prev.ConnID != connID {
		if ids, ok := r.byConn[prev.ConnID]; ok {
			delete(ids, identity)
			if len(ids) == 0 {
				delete(r.byConn, prev.ConnID)
			}
		}
	}

	r.entries[identity] = PresenceEntry{
		ConnID:   connID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}

	if _, ok := r.byConn[connID]; !ok {
		r.byConn[connID] = make(map[string]struct{})
	}
	r.byConn[connID][identity] = struct{}{}
}

// Lookup reports the live connection for an identity, if any.
func (r *Registry) Lookup(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[identity]
	if !ok {
		return "", false
	}
	return entry.ConnID, true
}

func (r *Registry) Entry(identity string) (PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[identity]
	return entry, ok
}

// RemoveConn purges every presence entry held by connID. Entries that were
// already overwritten by a newer connection are left untouched.
func (r *Registry) RemoveConn(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity := range r.byConn[connID] {
		if entry, ok := r.entries[identity]; ok && entry.ConnID == connID {
			delete(r.entries, identity)
		}
	}
	delete(r.byConn, connID)
}

// IdentityCount reports how many identities are currently present.
func (r *Registry) IdentityCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
