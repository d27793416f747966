package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DatabaseConnectionsGauge tracks connection pool state.
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections",
			Help: "Database connection pool state",
		},
		[]string{"state"},
	)

	// WebhookEventsTotal counts custodial webhook deliveries by outcome:
	// received, unauthorized, ignored, processed, bad_payload.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitgo_webhook_events_total",
			Help: "BitGo webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// DepositEntriesTotal counts reconciled webhook entries by result:
	// credited, updated, inserted, skipped, error.
	DepositEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposit_entries_total",
			Help: "Webhook transfer entries by reconciliation result",
		},
		[]string{"result"},
	)

	// DepositCreditedNaira accumulates fiat credited through the
	// reconciliation engine.
	DepositCreditedNaira = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deposit_credited_naira_total",
			Help: "Total naira credited to user balances by the webhook engine",
		},
	)

	// SpotPriceFetchesTotal counts spot price lookups by source: cache,
	// fetch, stale, error.
	SpotPriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_price_fetches_total",
			Help: "Spot price lookups by resolution source",
		},
		[]string{"source"},
	)
)
