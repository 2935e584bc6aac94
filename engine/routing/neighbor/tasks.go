package neighbor

import (
	"fmt"

	"github.com/dtngo/dtnd/model/dtn"
)

// Task is the union of the work items handled by the routing worker. It is a
// sealed interface: the worker dispatches on the concrete type exhaustively.
type Task interface {
	fmt.Stringer
	taskType() string
}

// SearchNextBundleTask triggers a search for bundles to transfer to the given
// peer. It is generated by transfer completions, transfer aborts and neighbor
// connectivity events.
type SearchNextBundleTask struct {
	EID dtn.EID
}

func (t *SearchNextBundleTask) taskType() string { return "search" }

func (t *SearchNextBundleTask) String() string {
	return fmt.Sprintf("SearchNextBundleTask: %s", t.EID)
}

// ProcessBundleTask routes one specific bundle, originally queued by Origin,
// towards the next-hop peer.
type ProcessBundleTask struct {
	Bundle  dtn.MetaBundle
	Origin  dtn.EID
	Nexthop dtn.EID
}

func (t *ProcessBundleTask) taskType() string { return "process" }

func (t *ProcessBundleTask) String() string {
	return fmt.Sprintf("ProcessBundleTask: %s", t.Bundle)
}
