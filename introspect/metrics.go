package introspect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// describeTotal counts describe lookups by result (hit, miss, shared, error).
	describeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_describe_total",
		Help: "Describe lookups by cache result",
	}, []string{"result"})

	// describeDuration tracks the latency of describes that reach the source.
	describeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relgraph_describe_duration_seconds",
		Help:    "Latency of uncached describe calls",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)
