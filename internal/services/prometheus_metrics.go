package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	conflictRetries     *prometheus.CounterVec
	reconciliationsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers and returns the ledger operation metrics
func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		operationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Ledger operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		conflictRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_balance_conflict_retries_total",
				Help: "Total number of balance write retries after losing a compare-and-set race",
			},
			[]string{"operation"},
		),
		reconciliationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_reconciliations_total",
				Help: "Total number of reconciliation checks by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveOperation records the outcome and duration of a ledger operation
func (m *PrometheusMetrics) ObserveOperation(operation, outcome string, seconds float64) {
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// CountConflictRetry records a lost compare-and-set race
func (m *PrometheusMetrics) CountConflictRetry(operation string) {
	m.conflictRetries.WithLabelValues(operation).Inc()
}

// CountReconciliation records a reconciliation check result
func (m *PrometheusMetrics) CountReconciliation(balanced bool) {
	result := "balanced"
	if !balanced {
		result = "unbalanced"
	}
	m.reconciliationsTotal.WithLabelValues(result).Inc()
}
