package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts store mutations by operation and result.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_store_operations_total",
		Help: "Graph store operations by operation and result",
	}, []string{"operation", "result"})

	// visibleNodes tracks the node count after the latest mutation.
	visibleNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relgraph_store_nodes",
		Help: "Nodes currently held by the most recently mutated store",
	})

	// visibleEdges tracks the edge count after the latest mutation.
	visibleEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relgraph_store_edges",
		Help: "Edges currently held by the most recently mutated store",
	})
)

func observe(operation string, err error) {
	result := "ok"
	switch {
	case err == ErrStaleResult:
		result = "stale"
	case err != nil:
		result = "error"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
}
