package module

import (
	"errors"

	"github.com/dtngo/dtnd/module/irrecoverable"
)

// ErrMultipleStartup is returned when Start is called more than once on the
// same component.
var ErrMultipleStartup = errors.New("component may only be started once")

// ReadyDoneAware provides an easy interface to wait for component startup and
// shutdown. Components that implement this interface only support a single
// start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	// This is an idempotent method.
	Ready() <-chan struct{}

	// Done returns a channel that is closed once shutdown has completed.
	// This is an idempotent method.
	Done() <-chan struct{}
}

// Startable provides an interface to start a component. Once started, the
// component is stopped by cancelling the context it was started with.
type Startable interface {
	// Start starts the component. Any irrecoverable errors encountered while
	// the component is running are thrown on the given SignalerContext.
	Start(irrecoverable.SignalerContext)
}
