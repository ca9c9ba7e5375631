package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reconciliation outcomes: created, already_exists, linked, name_mismatch
	ReconciliationOutcomes *prometheus.CounterVec

	// Approval decisions by entity and decision
	ApprovalDecisions *prometheus.CounterVec

	// Partial failures of coupled two-table writes
	PartialFailures *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ReconciliationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_reconciliation_total",
			Help:      "Patient reconciliation submissions by outcome",
		}, []string{"outcome"}),
		ApprovalDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_decisions_total",
			Help:      "Approval workflow decisions by entity and decision",
		}, []string{"entity", "decision"}),
		PartialFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_partial_failures_total",
			Help:      "Coupled status writes where the second write failed after the first succeeded",
		}, []string{"entity"}),
	}
}

// NewTestMetrics returns unregistered metrics for use in tests.
func NewTestMetrics() *Metrics {
	return &Metrics{
		ReconciliationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_reconciliation_total",
		}, []string{"outcome"}),
		ApprovalDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "approval_decisions_total",
		}, []string{"entity", "decision"}),
		PartialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "approval_partial_failures_total",
		}, []string{"entity"}),
	}
}
