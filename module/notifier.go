package module

// Notifier is a concurrency primitive for informing a worker routine about
// the arrival of new work unit(s). It behaves like a channel in that it can
// be passed by value and still allows concurrent updates of the same internal
// state.
//
// Notifications are idempotent: notifying an already-notified Notifier is a
// no-op. A worker draining all pending work after receiving a single
// notification therefore never misses work, and producers never block.
type Notifier struct {
	notifier chan struct{} // buffered channel with capacity 1
}

func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification, or no-ops if one is already pending.
func (n Notifier) Notify() {
	select {
	// dropping the notification is safe here: a pending notification already
	// guarantees the worker will wake up and drain the queue
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications.
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
