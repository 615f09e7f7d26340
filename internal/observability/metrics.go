package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sev_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sev_command_seconds",
			Help:    "Duration of command executions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sev_outcomes_total",
			Help: "Recorded pipeline outcomes",
		},
		[]string{"source", "code"},
	)

	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sev_ledger_operations_total",
			Help: "Ledger payments and refunds by result",
		},
		[]string{"kind", "result"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sev_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sev_outbox_lag_seconds",
			Help: "Age of the oldest relayed outbox record",
		},
	)

	RabbitPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sev_rabbit_publish_failures_total",
			Help: "Total failed rabbit publishes",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sev_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
