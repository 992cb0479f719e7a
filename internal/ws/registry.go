package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/pkg/metrics"
)

// Sender is the transport handle held for each live connection. The registry
// owns the handle for the connection's lifetime; implementations must be safe
// for concurrent Send calls.
type Sender interface {
	Send(v interface{}) error
	Close() error
}

// Registry tracks live client connections indexed by owning user. It is
// process-wide in-memory state: empty at startup, rebuilt from nothing on
// restart. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Sender
	owners map[string]uuid.UUID
	users  map[uuid.UUID]map[string]struct{}

	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		conns:   make(map[string]Sender),
		owners:  make(map[string]uuid.UUID),
		users:   make(map[uuid.UUID]map[string]struct{}),
		metrics: m,
	}
}

// Register adds a connection for an owner. Registering an id that is already
// present overwrites it, detaching it from its previous owner first.
func (r *Registry) Register(connID string, ownerID uuid.UUID, transport Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[connID]; ok {
		r.removeFromOwner(prev, connID)
	}

	r.conns[connID] = transport
	r.owners[connID] = ownerID
	if _, ok := r.users[ownerID]; !ok {
		r.users[ownerID] = make(map[string]struct{})
	}
	r.users[ownerID][connID] = struct{}{}

	r.updateGauges()
}

// Unregister removes a connection. Unknown ids are a no-op, so it is safe to
// call from every teardown path.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ownerID, ok := r.owners[connID]
	if !ok {
		return
	}

	delete(r.owners, connID)
	delete(r.conns, connID)
	r.removeFromOwner(ownerID, connID)

	r.updateGauges()
}

// ConnectionsFor returns the ids of the owner's live connections. An offline
// owner yields an empty slice, never an error.
func (r *Registry) ConnectionsFor(ownerID uuid.UUID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users[ownerID]))
	for id := range r.users[ownerID] {
		ids = append(ids, id)
	}
	return ids
}

// ConnectionCount returns the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// UserCount returns the number of distinct owners with live connections.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// CloseAll tears down every connection; used at process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, transport := range r.conns {
		transport.Close()
	}
	r.conns = make(map[string]Sender)
	r.owners = make(map[string]uuid.UUID)
	r.users = make(map[uuid.UUID]map[string]struct{})

	r.updateGauges()
}

// sendersFor snapshots the owner's transports so callers can send without
// holding the registry lock; a hung write must never starve the lock.
func (r *Registry) sendersFor(ownerID uuid.UUID) map[string]Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()

	senders := make(map[string]Sender, len(r.users[ownerID]))
	for id := range r.users[ownerID] {
		if transport, ok := r.conns[id]; ok {
			senders[id] = transport
		}
	}
	return senders
}

// removeFromOwner drops connID from the owner's set, deleting the owner key
// when the set empties. Caller must hold the write lock.
func (r *Registry) removeFromOwner(ownerID uuid.UUID, connID string) {
	set, ok := r.users[ownerID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, ownerID)
	}
}

func (r *Registry) updateGauges() {
	if r.metrics == nil {
		return
	}
	r.metrics.WSConnections.Set(float64(len(r.conns)))
	r.metrics.WSConnectedUsers.Set(float64(len(r.users)))
}
