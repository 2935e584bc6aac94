// Package taskqueue provides the cancelable FIFO queue feeding the routing
// worker. Producers push from arbitrary goroutines without blocking; a single
// consumer polls, blocking until work arrives or the queue is aborted.
package taskqueue

import (
	"errors"
	"fmt"
	mathbits "math/bits"
	"sync"

	"github.com/ef-ds/deque"

	"github.com/dtngo/dtnd/module"
)

// ErrAborted is returned by Poll once the queue has been aborted. It keeps
// being returned until the queue is Reset.
var ErrAborted = errors.New("task queue aborted")

// QueueLengthObserver is called with the new queue length each time it
// changes. It must be non-blocking.
type QueueLengthObserver func(int)

// ConstructorOption configures properties of the Queue.
type ConstructorOption func(*Queue) error

// WithCapacity bounds how many tasks the queue holds. Pushes beyond the
// capacity are silently dropped. By default the capacity is the largest int.
func WithCapacity(capacity int) ConstructorOption {
	return func(q *Queue) error {
		if capacity < 1 {
			return fmt.Errorf("capacity for task queue must be positive")
		}
		q.maxCapacity = capacity
		return nil
	}
}

// WithLengthObserver registers a callback invoked with the queue length after
// every change. Caution: the callback must be non-blocking.
func WithLengthObserver(callback QueueLengthObserver) ConstructorOption {
	return func(q *Queue) error {
		if callback == nil {
			return fmt.Errorf("nil is not a valid QueueLengthObserver")
		}
		q.lengthObserver = callback
		return nil
	}
}

// Queue is an order-preserving, thread-safe, cancelable task queue.
// Aborting wakes a blocked consumer immediately; pending tasks are retained
// but not handed out until Reset re-arms the queue.
type Queue struct {
	mu             sync.Mutex
	queue          deque.Deque
	aborted        bool
	abortChan      chan struct{}
	notifier       module.Notifier
	maxCapacity    int
	lengthObserver QueueLengthObserver
}

// NewQueue constructs an empty, armed queue.
func NewQueue(options ...ConstructorOption) (*Queue, error) {
	// maximum value for platform-specific int
	maxInt := 1<<(mathbits.UintSize-1) - 1

	q := &Queue{
		abortChan:      make(chan struct{}),
		notifier:       module.NewNotifier(),
		maxCapacity:    maxInt,
		lengthObserver: func(int) { /* noop */ },
	}
	for _, opt := range options {
		err := opt(q)
		if err != nil {
			return nil, fmt.Errorf("failed to apply constructor option to task queue: %w", err)
		}
	}
	return q, nil
}

// Push appends the given task to the tail of the queue and never blocks.
// It reports false when the task was dropped, either because the queue is
// aborted or its capacity is reached.
func (q *Queue) Push(task interface{}) bool {
	length, pushed := q.push(task)
	if !pushed {
		return false
	}

	q.lengthObserver(length + 1)
	q.notifier.Notify()
	return true
}

func (q *Queue) push(task interface{}) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.aborted {
		return 0, false
	}
	length := q.queue.Len()
	if length >= q.maxCapacity {
		return length, false
	}
	q.queue.PushBack(task)
	return length, true
}

// Poll removes and returns the task at the head of the queue, blocking while
// the queue is empty. Once the queue is aborted, Poll fails with ErrAborted
// without dequeueing, even if tasks are still pending.
// Poll must only be called from a single consumer goroutine.
func (q *Queue) Poll() (interface{}, error) {
	for {
		q.mu.Lock()
		if q.aborted {
			q.mu.Unlock()
			return nil, ErrAborted
		}
		task, ok := q.queue.PopFront()
		length := q.queue.Len()
		abort := q.abortChan
		q.mu.Unlock()

		if ok {
			q.lengthObserver(length)
			return task, nil
		}

		select {
		case <-q.notifier.Channel():
		case <-abort:
		}
	}
}

// Abort cancels the queue: a blocked Poll unblocks immediately with
// ErrAborted and subsequent pushes are dropped. Abort is idempotent.
func (q *Queue) Abort() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.aborted {
		return
	}
	q.aborted = true
	close(q.abortChan)
}

// Reset discards all pending tasks and re-arms an aborted queue. It is used
// on component restart and must not be called while a consumer is polling.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if _, ok := q.queue.PopFront(); !ok {
			break
		}
	}
	// drain a stale notification
	select {
	case <-q.notifier.Channel():
	default:
	}
	q.aborted = false
	q.abortChan = make(chan struct{})

	q.lengthObserver(0)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}
