package neighbor

import (
	"errors"
)

// ErrNoRouteKnown is the benign outcome of a routing decision that found no
// acceptable (protocol, peer) combination for a bundle.
var ErrNoRouteKnown = errors.New("no route known")
