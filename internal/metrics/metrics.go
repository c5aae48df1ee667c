package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamDuration times marketplace calls by path and status code ("error" when no response)
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Name:      "marketplace_request_duration_seconds",
		Help:      "Duration of marketplace API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "code"})

	// HTTPRequests counts served requests by route and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "code"})

	// CourierLookups counts partner lookups by outcome: fetched, skipped, failed
	CourierLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "courier_lookups_total",
		Help:      "Courier partner lookups by outcome.",
	}, []string{"outcome"})

	// SelectionModes counts the selection mode a lookup started in
	SelectionModes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "courier_selection_mode_total",
		Help:      "Initial courier selection mode after a lookup.",
	}, []string{"mode"})

	// StaleResults counts location results dropped because a newer request was issued
	StaleResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "stale_location_results_total",
		Help:      "Location lookups discarded as stale.",
	}, []string{"level"})

	// OrdersPlaced counts order placement attempts by result: placed, pending_login, rejected, failed
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "orders_total",
		Help:      "Order placement attempts by result.",
	}, []string{"result"})
)
