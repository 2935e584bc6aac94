package metrics

// Prometheus metric namespaces
const (
	namespaceRouting = "dtnd_routing"
)

// Prometheus metric subsystems
const (
	subsystemEngine   = "engine"
	subsystemNeighbor = "neighbor"
)

// Metric label names
const (
	LabelTaskType = "task"
	LabelReason   = "reason"
	LabelProtocol = "protocol"
)
