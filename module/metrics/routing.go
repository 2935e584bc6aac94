package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dtngo/dtnd/module"
)

// RoutingCollector instruments the routing engine.
type RoutingCollector struct {
	tasksProcessed     *prometheus.CounterVec
	tasksAbandoned     *prometheus.CounterVec
	transfersRequested *prometheus.CounterVec
	taskQueueLength    prometheus.Gauge
	neighborCount      prometheus.Gauge
}

var _ module.RoutingMetrics = (*RoutingCollector)(nil)

func NewRoutingCollector() *RoutingCollector {

	rc := &RoutingCollector{

		tasksProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "tasks_processed_total",
			Namespace: namespaceRouting,
			Subsystem: subsystemEngine,
			Help:      "the number of routing tasks processed successfully",
		}, []string{LabelTaskType}),

		tasksAbandoned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "tasks_abandoned_total",
			Namespace: namespaceRouting,
			Subsystem: subsystemEngine,
			Help:      "the number of routing tasks abandoned for an expected reason",
		}, []string{LabelTaskType, LabelReason}),

		transfersRequested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "transfers_requested_total",
			Namespace: namespaceRouting,
			Subsystem: subsystemEngine,
			Help:      "the number of bundle transfers handed to the transport layer",
		}, []string{LabelProtocol}),

		taskQueueLength: promauto.NewGauge(prometheus.GaugeOpts{
			Name:      "task_queue_length",
			Namespace: namespaceRouting,
			Subsystem: subsystemEngine,
			Help:      "the number of routing tasks waiting in the task queue",
		}),

		neighborCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name:      "entries",
			Namespace: namespaceRouting,
			Subsystem: subsystemNeighbor,
			Help:      "the number of tracked neighbor entries",
		}),
	}

	return rc
}

func (rc *RoutingCollector) RoutingTaskProcessed(taskType string) {
	rc.tasksProcessed.With(prometheus.Labels{LabelTaskType: taskType}).Inc()
}

func (rc *RoutingCollector) RoutingTaskAbandoned(taskType string, reason string) {
	rc.tasksAbandoned.With(prometheus.Labels{LabelTaskType: taskType, LabelReason: reason}).Inc()
}

func (rc *RoutingCollector) TransferRequested(protocol string) {
	rc.transfersRequested.With(prometheus.Labels{LabelProtocol: protocol}).Inc()
}

func (rc *RoutingCollector) TaskQueueLength(length uint) {
	rc.taskQueueLength.Set(float64(length))
}

func (rc *RoutingCollector) NeighborCount(count uint) {
	rc.neighborCount.Set(float64(count))
}
