// Package conman provides an in-memory connection manager tracking reachable
// neighbors and the protocols shared with each of them. Discovery beacons or
// static configuration feed it; the routing engine consumes it.
package conman

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/network"
)

// Manager implements network.ConnectionManager. Connectivity changes are
// fanned out to subscribed observers.
type Manager struct {
	mu        sync.RWMutex
	log       zerolog.Logger
	neighbors map[dtn.EID]dtn.Node
	observers []network.NeighborObserver
}

var _ network.ConnectionManager = (*Manager)(nil)

func New(log zerolog.Logger) *Manager {
	return &Manager{
		log:       log.With().Str("component", "connection_manager").Logger(),
		neighbors: make(map[dtn.EID]dtn.Node),
	}
}

// Subscribe registers an observer for connectivity events. Not
// concurrency-safe with event delivery; subscribe before neighbors are added.
func (m *Manager) Subscribe(observer network.NeighborObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

// Unsubscribe detaches a previously subscribed observer, e.g. when the
// routing engine it feeds was torn down. Unknown observers are ignored.
func (m *Manager) Unsubscribe(observer network.NeighborObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.observers {
		if existing == observer {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// UpsertNeighbor adds a reachable neighbor or updates its protocol list, and
// raises NeighborDataChanged.
func (m *Manager) UpsertNeighbor(node dtn.Node) {
	m.mu.Lock()
	m.neighbors[node.EID] = node
	observers := m.observers
	m.mu.Unlock()

	m.log.Debug().
		Str("peer", node.EID.String()).
		Int("protocols", len(node.Protocols)).
		Msg("neighbor data changed")

	for _, observer := range observers {
		observer.NeighborDataChanged(node.EID)
	}
}

// RemoveNeighbor drops a neighbor that became unreachable and raises
// NeighborGone. Unknown peers are ignored.
func (m *Manager) RemoveNeighbor(eid dtn.EID) {
	m.mu.Lock()
	_, known := m.neighbors[eid]
	delete(m.neighbors, eid)
	observers := m.observers
	m.mu.Unlock()

	if !known {
		return
	}

	m.log.Debug().Str("peer", eid.String()).Msg("neighbor gone")

	for _, observer := range observers {
		observer.NeighborGone(eid)
	}
}

// SupportedProtocols returns the protocols shared with the given peer, in
// preference order.
func (m *Manager) SupportedProtocols(eid dtn.EID) ([]dtn.Protocol, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.neighbors[eid]
	if !ok {
		return nil, network.ErrNeighborUnreachable
	}
	protocols := make([]dtn.Protocol, len(node.Protocols))
	copy(protocols, node.Protocols)
	return protocols, nil
}

// Neighbors returns all currently reachable peers.
func (m *Manager) Neighbors() []dtn.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make([]dtn.Node, 0, len(m.neighbors))
	for _, node := range m.neighbors {
		nodes = append(nodes, node)
	}
	return nodes
}
