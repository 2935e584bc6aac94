package metrics

import (
	"github.com/dtngo/dtnd/module"
)

// NoopCollector implements all metrics interfaces with no-ops, for use in
// tests and tools.
type NoopCollector struct{}

var _ module.RoutingMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) RoutingTaskProcessed(taskType string)               {}
func (nc *NoopCollector) RoutingTaskAbandoned(taskType string, reason string) {}
func (nc *NoopCollector) TransferRequested(protocol string)                  {}
func (nc *NoopCollector) TaskQueueLength(length uint)                        {}
func (nc *NoopCollector) NeighborCount(count uint)                           {}
