// Package network defines the interface boundary towards the link and
// transport layer: which neighbors exist, which protocols each one speaks,
// and how a bundle transfer is requested.
package network

import (
	"errors"

	"github.com/dtngo/dtnd/model/dtn"
)

// ErrNeighborUnreachable is returned when a peer has no live connectivity.
var ErrNeighborUnreachable = errors.New("neighbor is not reachable")

// ConnectionManager knows the set of directly reachable neighbors and the
// link technologies shared with each of them.
type ConnectionManager interface {
	// SupportedProtocols returns the protocols usable to reach the given
	// peer, in preference order. It fails with ErrNeighborUnreachable for
	// unknown peers.
	SupportedProtocols(eid dtn.EID) ([]dtn.Protocol, error)

	// Neighbors returns all currently reachable peers.
	Neighbors() []dtn.Node
}

// NeighborObserver receives connectivity events from a connection manager.
// Implementations must be non-blocking; the events are raised from the
// connection manager's own goroutines.
type NeighborObserver interface {
	// NeighborDataChanged is raised when a neighbor appeared or its
	// reachability metadata changed.
	NeighborDataChanged(peer dtn.EID)

	// NeighborGone is raised when a neighbor became unreachable.
	NeighborGone(peer dtn.EID)
}

// Transport moves bundles to directly reachable peers. Transfer is
// asynchronous: it only queues the request, and the outcome is reported later
// through the TransferCompleted/TransferAborted notifications of the routing
// engine.
type Transport interface {
	Transfer(nexthop dtn.EID, id dtn.BundleID, protocol dtn.Protocol) error
}
