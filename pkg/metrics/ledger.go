package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks the reporting pipeline: how many ledger rows each
// operation reduced and how long it took.
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewLedgerMetrics registers the pipeline metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_operation_duration_seconds",
		Help:      "Duration of ledger reporting operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	rows := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_rows_scanned",
		Help:      "Ledger rows returned by the store per operation.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operation_failures_total",
		Help:      "Failed ledger reporting operations by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, rows, failure)
	return &LedgerMetrics{
		duration: duration,
		rows:     rows,
		failure:  failure,
	}
}

// ObserveSuccess records a completed operation.
func (l *LedgerMetrics) ObserveSuccess(operation string, rowCount int, elapsed time.Duration) {
	if l == nil || l.duration == nil {
		return
	}
	operation = normalizeLabel(operation)
	l.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	l.rows.WithLabelValues(operation).Observe(float64(rowCount))
}

// IncFailure counts a failed operation under its error code.
func (l *LedgerMetrics) IncFailure(operation, code string) {
	if l == nil || l.failure == nil {
		return
	}
	l.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
