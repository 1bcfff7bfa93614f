package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	nodeExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tcstack",
			Subsystem: "graph",
			Name:      "node_executions_total",
			Help:      "Total number of graph node executions by kind and result",
		},
		[]string{"kind", "result"},
	)

	nodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tcstack",
			Subsystem: "graph",
			Name:      "node_duration_seconds",
			Help:      "Duration of graph node executions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14), // 50ms to ~7min
		},
		[]string{"kind"},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tcstack",
			Subsystem: "graph",
			Name:      "runs_total",
			Help:      "Total number of graph runs by result",
		},
		[]string{"result"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		nodeExecutionsTotal,
		nodeDuration,
		runsTotal,
	)
}

func recordNodeMetric(kind Kind, status Status, seconds float64) {
	nodeExecutionsTotal.WithLabelValues(string(kind), string(status)).Inc()
	if status == StatusCompleted || status == StatusFailed {
		nodeDuration.WithLabelValues(string(kind)).Observe(seconds)
	}
}

func recordRunMetric(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	runsTotal.WithLabelValues(result).Inc()
}
