package module

// RoutingMetrics exposes the instrumentation of the routing engine.
type RoutingMetrics interface {
	// RoutingTaskProcessed is called after a task was handled successfully.
	RoutingTaskProcessed(taskType string)

	// RoutingTaskAbandoned is called when a task is dropped for one of the
	// expected benign reasons.
	RoutingTaskAbandoned(taskType string, reason string)

	// TransferRequested is called when a bundle transfer is handed to the
	// transport layer.
	TransferRequested(protocol string)

	// TaskQueueLength reports the routing task queue length after a change.
	TaskQueueLength(length uint)

	// NeighborCount reports the number of tracked neighbor entries.
	NeighborCount(count uint)
}
