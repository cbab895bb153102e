package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total number of upstream API requests",
	}, []string{"endpoint", "outcome"})

	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Latency of upstream API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StoreRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_refresh_total",
		Help: "Total number of resource store list refreshes",
	}, []string{"store", "result"})

	StoreStaleDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_stale_responses_dropped_total",
		Help: "Responses discarded because a newer request superseded them",
	}, []string{"store"})

	SessionLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	SessionLogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_logouts_total",
		Help: "Total number of logouts",
	})

	SessionRestoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_restores_total",
		Help: "Total number of session restore attempts",
	}, []string{"result"})

	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Total number of failed audit trail writes",
	})

	EventPublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_publish_failures_total",
		Help: "Total number of failed event publishes",
	}, []string{"event"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
