// Package storage defines the interface boundary towards the bundle storage
// engine. The routing core only depends on the selection primitive; the
// storage implementation, durability and query language are out of its hands.
package storage

import (
	"github.com/dtngo/dtnd/model/dtn"
)

// Selection describes one query against the bundle store.
type Selection struct {
	// Limit caps how many bundles the selection may accept. A limit of zero
	// selects nothing.
	Limit uint

	// DestinationNode optionally restricts the candidate set to bundles
	// addressed to endpoints of the given node. This is predicate pushdown
	// only: stores that cannot evaluate it may offer every bundle, since the
	// filter below re-validates the destination.
	DestinationNode dtn.EID

	// Filter is invoked for every candidate bundle, in storage order.
	// Returning true counts the candidate against Limit; returning false
	// skips it without error. The callback owns any result accumulation.
	Filter func(dtn.MetaBundle) bool
}

// Seeker is the selection primitive offered by the bundle store. Select
// streams candidates through the selection's filter until the limit is
// reached or the store is exhausted, and fails with ErrNoBundleFound when
// no candidate was accepted.
type Seeker interface {
	Select(sel Selection) error
}

// Bundles is the full store interface used outside the routing core.
type Bundles interface {
	Seeker

	// Add stores a bundle's metadata. It fails with ErrAlreadyStored when
	// the identity is already present.
	Add(meta dtn.MetaBundle) error

	// Remove drops a bundle from the store, reporting whether it existed.
	Remove(id dtn.BundleID) bool

	// Size returns the number of stored bundles.
	Size() uint
}
