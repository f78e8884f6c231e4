package metrics

import "github.com/prometheus/client_golang/prometheus"

// Oracle (LLM scorer) metrics.
var (
	OracleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Total number of oracle scoring requests",
		},
		[]string{"provider", "model", "status"},
	)

	OracleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Oracle request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "model"},
	)

	OracleTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_tokens_total",
			Help:      "Total oracle tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	OracleErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Total oracle errors by kind",
		},
		[]string{"provider", "model", "kind"},
	)

	OracleBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oracle_budget_tokens_remaining",
			Help:      "Remaining oracle token budget",
		},
		[]string{"provider", "period"},
	)
)
