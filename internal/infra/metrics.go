package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide collectors, served on /metrics by promhttp.
var (
	SequenceAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veedra_sequence_allocations_total",
		Help: "Sequence allocations by scope family and outcome.",
	}, []string{"scope", "outcome"})

	ComboEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veedra_combo_evaluations_total",
		Help: "Combo evaluations by outcome (applied, rejected, invalid).",
	}, []string{"outcome"})

	BillsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veedra_bills_closed_total",
		Help: "Bills persisted.",
	})

	BillFinalAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veedra_bill_final_amount",
		Help:    "Rounded final amount of closed bills.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
	})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "veedra_circuit_breaker_state",
		Help: "Breaker position: 0 closed, 1 open, 2 half-open.",
	}, []string{"breaker"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veedra_jobs_processed_total",
		Help: "Async jobs by queue and outcome.",
	}, []string{"queue", "outcome"})
)
