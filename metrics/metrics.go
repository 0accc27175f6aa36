package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Votes counts ballots that changed the ledger, by pool and direction.
	Votes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobqueue_votes_total",
			Help: "Ballots that changed a reviewer's standing intent",
		},
		[]string{"pool", "direction", "action"},
	)

	// Transitions counts committed lifecycle transitions.
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobqueue_transitions_total",
			Help: "Committed suggestion transitions by kind and trigger",
		},
		[]string{"transition", "trigger"},
	)

	// Comparisons counts comparison workflows by outcome.
	Comparisons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobqueue_comparisons_total",
			Help: "Comparison workflows by final state",
		},
		[]string{"state"},
	)

	// CollaboratorFailures counts best-effort side effects that failed.
	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobqueue_collaborator_failures_total",
			Help: "Failed side effects by collaborator",
		},
		[]string{"collaborator"},
	)

	// TxDuration observes how long vote transactions take, retries included.
	TxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blobqueue_tx_seconds",
			Help:    "Duration of suggestion transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
