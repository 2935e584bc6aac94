// Package neighbor implements the neighbor routing extension: the forwarding
// strategy that pushes stored bundles directly to their destination node
// whenever that node is a reachable neighbor. No transit routing and no group
// delivery happens here; those are the business of other extensions.
package neighbor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/dtngo/dtnd/engine/common/taskqueue"
	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/module"
	"github.com/dtngo/dtnd/module/bundlefilter"
	"github.com/dtngo/dtnd/module/component"
	"github.com/dtngo/dtnd/module/irrecoverable"
	"github.com/dtngo/dtnd/module/neighbordb"
	"github.com/dtngo/dtnd/network"
	"github.com/dtngo/dtnd/storage"
)

// defaultSearchLimit bounds how many bundles one search task may select,
// regardless of how many transfer slots are free.
const defaultSearchLimit = 10

// defaultQueueCapacity bounds the inbound routing task queue.
const defaultQueueCapacity = 10_000

// State describes the worker loop lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Config holds the tunables of the routing engine.
type Config struct {
	SearchLimit   uint
	QueueCapacity int
}

// OptionFunc overrides a default config value.
type OptionFunc func(*Config)

// WithSearchLimit caps the number of bundles selected by one search task.
func WithSearchLimit(limit uint) OptionFunc {
	return func(cfg *Config) {
		cfg.SearchLimit = limit
	}
}

// WithQueueCapacity sets the task queue capacity.
func WithQueueCapacity(capacity int) OptionFunc {
	return func(cfg *Config) {
		cfg.QueueCapacity = capacity
	}
}

// Engine is the neighbor routing engine. It serializes all routing work on a
// single worker: tasks enter through the non-blocking notification methods
// and are drained one by one, each task reading and updating the neighbor
// database under its lock and handing selected bundles to the transport.
type Engine struct {
	log       zerolog.Logger
	metrics   module.RoutingMetrics
	cfg       Config
	local     dtn.EID
	db        *neighbordb.Database
	queue     *taskqueue.Queue
	conman    network.ConnectionManager
	seeker    storage.Seeker
	filter    bundlefilter.Filter
	transport network.Transport
	state     *atomic.Int32

	cm *component.ComponentManager
	component.Component
}

var _ network.NeighborObserver = (*Engine)(nil)

// New creates a neighbor routing engine for the given local node identity and
// collaborators.
func New(
	log zerolog.Logger,
	metrics module.RoutingMetrics,
	local dtn.EID,
	db *neighbordb.Database,
	conman network.ConnectionManager,
	seeker storage.Seeker,
	filter bundlefilter.Filter,
	transport network.Transport,
	options ...OptionFunc,
) (*Engine, error) {

	cfg := Config{
		SearchLimit:   defaultSearchLimit,
		QueueCapacity: defaultQueueCapacity,
	}
	for _, option := range options {
		option(&cfg)
	}

	if !local.Valid() {
		return nil, fmt.Errorf("invalid local EID: %s", local)
	}

	queue, err := taskqueue.NewQueue(
		taskqueue.WithCapacity(cfg.QueueCapacity),
		taskqueue.WithLengthObserver(func(length int) { metrics.TaskQueueLength(uint(length)) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create routing task queue: %w", err)
	}

	e := &Engine{
		log:       log.With().Str("engine", "neighbor_routing").Logger(),
		metrics:   metrics,
		cfg:       cfg,
		local:     local,
		db:        db,
		queue:     queue,
		conman:    conman,
		seeker:    seeker,
		filter:    filter,
		transport: transport,
		state:     atomic.NewInt32(int32(StateIdle)),
	}

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.processTasksLoop).
		AddWorker(e.abortQueueOnShutdown).
		Build()
	e.Component = e.cm

	return e, nil
}

// Tag identifies this routing extension among the ones registered with the
// daemon.
func (e *Engine) Tag() string {
	return "neighbor"
}

// State returns the current worker loop state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Start resets the task queue and launches the worker loop. Cancelling the
// given context aborts the queue and drives the worker to StateStopped;
// in-flight transfers are not cancelled, only new dispatch stops.
func (e *Engine) Start(ctx irrecoverable.SignalerContext) {
	e.queue.Reset()
	e.log.Info().Str("local", e.local.String()).Msg("starting neighbor routing engine")
	e.Component.Start(ctx)
}

// NeighborDataChanged enqueues a search for bundles deliverable to the given
// peer. Safe for concurrent use, never blocks.
func (e *Engine) NeighborDataChanged(peer dtn.EID) {
	e.enqueue(&SearchNextBundleTask{EID: peer})
}

// NeighborGone drops the routing state of an unreachable peer.
func (e *Engine) NeighborGone(peer dtn.EID) {
	e.db.Lock()
	e.db.Remove(peer)
	e.metrics.NeighborCount(e.db.Size())
	e.db.Unlock()
}

// BundleQueued offers a locally queued bundle to every known neighbor except
// the peer it came from. Safe for concurrent use, never blocks.
func (e *Engine) BundleQueued(peer dtn.EID, meta dtn.MetaBundle) {
	for _, node := range e.conman.Neighbors() {
		if node.EID == peer {
			continue
		}
		e.enqueue(&ProcessBundleTask{Bundle: meta, Origin: peer, Nexthop: node.EID})
	}
}

// TransferCompleted releases the transfer slot reserved for the bundle,
// records it in the peer's known-bundle summary and looks for the next bundle
// to send. Raised asynchronously by the transport layer.
func (e *Engine) TransferCompleted(peer dtn.EID, id dtn.BundleID) {
	e.db.Lock()
	if entry, err := e.db.Get(peer, false); err == nil {
		entry.Release(id, true)
	}
	e.db.Unlock()

	e.enqueue(&SearchNextBundleTask{EID: peer})
}

// TransferAborted releases the transfer slot reserved for the bundle without
// marking it delivered, so a later task may retry it.
func (e *Engine) TransferAborted(peer dtn.EID, id dtn.BundleID) {
	e.db.Lock()
	if entry, err := e.db.Get(peer, false); err == nil {
		entry.Release(id, false)
	}
	e.db.Unlock()

	e.enqueue(&SearchNextBundleTask{EID: peer})
}

// enqueue pushes a task and accounts for drops. Pushes are dropped when the
// queue is at capacity or already aborted for shutdown; both are survivable,
// since the next connectivity event regenerates the search.
func (e *Engine) enqueue(task Task) {
	if !e.queue.Push(task) {
		e.metrics.RoutingTaskAbandoned(task.taskType(), "queue_full")
		e.log.Debug().Str("task", task.String()).Msg("task dropped, queue not accepting")
	}
}

// abortQueueOnShutdown unblocks the worker loop's poll when the component
// shuts down.
func (e *Engine) abortQueueOnShutdown(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()
	e.queue.Abort()
}

// processTasksLoop drains the task queue one task at a time. All expected
// failure modes abandon the current task only; anything unexpected is thrown
// as irrecoverable and terminates the loop.
func (e *Engine) processTasksLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	e.state.Store(int32(StateRunning))
	defer e.state.Store(int32(StateStopped))
	ready()

	// the result list is reused across iterations
	var results routingResult

	for {
		item, err := e.queue.Poll()
		if err != nil {
			// the queue only fails when it was aborted for shutdown
			e.state.Store(int32(StateDraining))
			e.log.Debug().Msg("task queue aborted, stopping worker")
			return
		}

		task, ok := item.(Task)
		if !ok {
			// a foreign work item is ignored, not an error
			e.log.Warn().Type("item", item).Msg("discarding unknown task type")
			continue
		}

		e.log.Debug().Str("task", task.String()).Msg("processing task")

		err = e.dispatch(task, &results)
		if err != nil {
			if !isExpected(err) {
				ctx.Throw(fmt.Errorf("could not process task (%s): %w", task, err))
			}
			e.metrics.RoutingTaskAbandoned(task.taskType(), reason(err))
			e.log.Debug().Str("task", task.String()).Err(err).Msg("task abandoned")
			continue
		}

		e.metrics.RoutingTaskProcessed(task.taskType())
	}
}

// dispatch routes a task to its handler based on the concrete task type.
func (e *Engine) dispatch(task Task, results *routingResult) error {
	switch t := task.(type) {
	case *SearchNextBundleTask:
		return e.searchNextBundles(t.EID, results)
	case *ProcessBundleTask:
		return e.processBundle(t)
	default:
		return fmt.Errorf("invalid task type (%T)", task)
	}
}

// searchNextBundles selects deliverable bundles for the given peer and hands
// them to the transport, as long as transfer slots are free.
func (e *Engine) searchNextBundles(peer dtn.EID, results *routingResult) error {
	results.clear()

	err := e.selectBundles(peer, results)
	if err != nil {
		return err
	}

	e.log.Debug().
		Str("peer", peer.String()).
		Int("bundles", results.size()).
		Msg("selected bundles for transfer")

	// transfer issuance happens outside the database lock, so other routing
	// work is not blocked on transport I/O
	for _, pair := range results.pairs {
		err := e.transferTo(peer, pair.bundle, pair.protocol)
		if err != nil {
			if errors.Is(err, neighbordb.ErrAlreadyInTransit) {
				// another task already covers this bundle
				continue
			}
			return err
		}
	}

	return nil
}

// selectBundles populates the result list for one search task. The database
// lock spans the lookup, the slot check and the whole selection, so that no
// concurrent completion can interleave with the decisions.
func (e *Engine) selectBundles(peer dtn.EID, results *routingResult) error {
	e.db.Lock()
	defer e.db.Unlock()

	entry, err := e.db.Get(peer, false)
	if err != nil {
		return fmt.Errorf("no routing state for %s: %w", peer, err)
	}

	// check if enough transfer slots are available (threshold reached)
	if !entry.ThresholdReached() {
		return fmt.Errorf("slots exhausted for %s: %w", peer, neighbordb.ErrNoMoreTransfers)
	}

	// get the protocols supported by both the local node and the peer
	plist, err := e.conman.SupportedProtocols(entry.EID)
	if err != nil {
		return fmt.Errorf("no protocols for %s: %w", peer, err)
	}

	limit := entry.FreeTransferSlots()
	if limit > e.cfg.SearchLimit {
		limit = e.cfg.SearchLimit
	}

	return e.seeker.Select(storage.Selection{
		Limit:           limit,
		DestinationNode: entry.EID.Node(),
		Filter: func(meta dtn.MetaBundle) bool {
			protocol, ok := e.shouldRouteTo(meta, entry, plist)
			if ok {
				results.put(meta, protocol)
			}
			return ok
		},
	})
}

// processBundle decides whether one specific bundle goes to the given
// next-hop and requests the transfer if so.
func (e *Engine) processBundle(task *ProcessBundleTask) error {
	// get the protocols supported by both the local node and the peer
	plist, err := e.conman.SupportedProtocols(task.Nexthop)
	if err != nil {
		return fmt.Errorf("no protocols for %s: %w", task.Nexthop, err)
	}

	e.db.Lock()
	entry, err := e.db.Get(task.Nexthop, true)
	if err != nil {
		e.db.Unlock()
		return err
	}
	e.metrics.NeighborCount(e.db.Size())
	protocol, ok := e.shouldRouteTo(task.Bundle, entry, plist)
	e.db.Unlock()

	if !ok {
		return ErrNoRouteKnown
	}

	return e.transferTo(task.Nexthop, task.Bundle, protocol)
}

// shouldRouteTo is the routing decision: it reports whether the bundle should
// be forwarded to the neighbor and, if so, over which protocol. Rejections
// are the normal outcome and carry no side effect.
// The caller must hold the database lock.
func (e *Engine) shouldRouteTo(meta dtn.MetaBundle, entry *neighbordb.Entry, plist []dtn.Protocol) (dtn.Protocol, bool) {
	// do not forward bundles with an exhausted hop budget
	if meta.Hopcount == 0 {
		return dtn.ProtocolUndefined, false
	}

	if meta.Singleton {
		// do not forward bundles destined for the local node
		if meta.Destination.SameHost(e.local) {
			return dtn.ProtocolUndefined, false
		}

		// only forward bundles to their destination node
		if !meta.Destination.SameHost(entry.EID) {
			return dtn.ProtocolUndefined, false
		}
	} else {
		// group delivery is not handled by this extension
		return dtn.ProtocolUndefined, false
	}

	// do not forward bundles already known by the destination
	if entry.Has(meta.ID) {
		return dtn.ProtocolUndefined, false
	}

	// take the first protocol, in the connection manager's preference order,
	// that the bundle filter accepts
	for _, protocol := range plist {
		verdict := e.filter(bundlefilter.Context{
			Bundle:   meta,
			Peer:     entry.EID,
			Protocol: protocol,
		})
		if verdict == bundlefilter.Accept {
			return protocol, true
		}
	}

	return dtn.ProtocolUndefined, false
}

// transferTo reserves a transfer slot for the bundle and requests the
// transfer from the transport layer. The reservation is released by the
// TransferCompleted/TransferAborted notifications, or immediately when the
// transport rejects the request.
func (e *Engine) transferTo(nexthop dtn.EID, meta dtn.MetaBundle, protocol dtn.Protocol) error {
	e.db.Lock()
	entry, err := e.db.Get(nexthop, true)
	if err == nil {
		e.metrics.NeighborCount(e.db.Size())
		err = entry.Acquire(meta.ID)
	}
	e.db.Unlock()
	if err != nil {
		return err
	}

	e.log.Debug().
		Str("bundle", meta.ID.String()).
		Str("peer", nexthop.String()).
		Str("protocol", protocol.String()).
		Msg("requesting transfer")

	err = e.transport.Transfer(nexthop, meta.ID, protocol)
	if err != nil {
		// the transfer never started, return the slot right away
		e.db.Lock()
		if entry, lookupErr := e.db.Get(nexthop, false); lookupErr == nil {
			entry.Release(meta.ID, false)
		}
		e.db.Unlock()
		return fmt.Errorf("transfer request to %s failed: %w", nexthop, err)
	}

	e.metrics.TransferRequested(protocol.String())
	return nil
}

// isExpected classifies the benign task outcomes: they abandon the current
// task, everything else terminates the worker.
func isExpected(err error) bool {
	return errors.Is(err, neighbordb.ErrEntryNotFound) ||
		errors.Is(err, neighbordb.ErrNoMoreTransfers) ||
		errors.Is(err, neighbordb.ErrAlreadyInTransit) ||
		errors.Is(err, network.ErrNeighborUnreachable) ||
		errors.Is(err, storage.ErrNoBundleFound) ||
		errors.Is(err, ErrNoRouteKnown)
}

// reason maps a benign error to a stable metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, neighbordb.ErrEntryNotFound):
		return "entry_not_found"
	case errors.Is(err, neighbordb.ErrNoMoreTransfers):
		return "no_more_transfers"
	case errors.Is(err, neighbordb.ErrAlreadyInTransit):
		return "already_in_transit"
	case errors.Is(err, network.ErrNeighborUnreachable):
		return "neighbor_unreachable"
	case errors.Is(err, storage.ErrNoBundleFound):
		return "no_bundle_found"
	case errors.Is(err, ErrNoRouteKnown):
		return "no_route_known"
	default:
		return "other"
	}
}

// routingResult is the ordered collection of (bundle, protocol) pairs
// selected by one search task.
type routingResult struct {
	pairs []routingPair
}

type routingPair struct {
	bundle   dtn.MetaBundle
	protocol dtn.Protocol
}

func (r *routingResult) put(meta dtn.MetaBundle, protocol dtn.Protocol) {
	r.pairs = append(r.pairs, routingPair{bundle: meta, protocol: protocol})
}

func (r *routingResult) clear() {
	r.pairs = r.pairs[:0]
}

func (r *routingResult) size() int {
	return len(r.pairs)
}
