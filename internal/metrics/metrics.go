package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NodesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_nodes_added_total",
		Help: "Total number of nodes added to the network.",
	})

	EdgesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_edges_created_total",
		Help: "Total number of edges committed to the network.",
	})

	EdgesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_edges_removed_total",
		Help: "Total number of edges removed from the network.",
	})

	EdgesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_edges_reversed_total",
		Help: "Total number of edges reversed in the network.",
	})

	MutationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bayesnet_mutations_rejected_total",
		Help: "Total number of rejected mutations, labelled by reason.",
	}, []string{"reason"})

	CPDRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_cpd_rebuilds_total",
		Help: "Total number of per-node CPD rebuilds.",
	})

	OrderRecomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_order_recomputations_total",
		Help: "Total number of topological order recomputations.",
	})

	NetworkNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bayesnet_network_nodes",
		Help: "Current number of nodes in the network.",
	})

	NetworkEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bayesnet_network_edges",
		Help: "Current number of edges in the network.",
	})

	MutationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bayesnet_mutation_duration_ms",
		Help:    "End-to-end structural mutation latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	DatasetReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bayesnet_dataset_reloads_total",
		Help: "Total number of dataset reloads that triggered a CPD refresh.",
	})
)
