package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Vault connector call latency (milliseconds)
	VaultCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_call_latency_ms",
			Help:    "Yield vault call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"endpoint", "status"},
	)

	// Ledger operation counters
	JobsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_jobs_posted_total",
			Help: "Total number of jobs posted",
		},
	)

	BidsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_bids_placed_total",
			Help: "Total number of bids placed",
		},
	)

	MilestonesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_milestones_confirmed_total",
			Help: "Total number of milestones confirmed",
		},
	)

	PaymentsReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_payments_released_total",
			Help: "Total number of payments released to freelancers",
		},
		[]string{"path"}, // path: direct, unstake
	)

	AmountReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_amount_released_units",
			Help: "Cumulative asset units released to freelancers",
		},
		[]string{"path"},
	)

	// Durable-mirror write failures (mirror is best-effort, arena stays authoritative)
	MirrorWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mirror_write_failures_total",
			Help: "Total number of failed writes to the Postgres mirror",
		},
		[]string{"table"},
	)

	// Mirror queries exceeding the slow threshold
	SlowQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_queries_total",
			Help: "Total number of slow database queries",
		},
	)

	// Worker event consumption latency (milliseconds)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"routing_key", "queue"},
	)
)

// RecordHTTPRequestDuration records one HTTP request observation.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordVaultCall records one vault connector call.
func RecordVaultCall(endpoint, status string, duration time.Duration) {
	VaultCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// RecordPaymentReleased counts a payout and its amount.
func RecordPaymentReleased(path string, amount uint64) {
	PaymentsReleased.WithLabelValues(path).Inc()
	AmountReleased.WithLabelValues(path).Add(float64(amount))
}

// RecordMQConsumeLatency records one consumed message.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
