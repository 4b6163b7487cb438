package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheetscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	rateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sheetscan_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	trackedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sheetscan_rate_limit_tracked_clients",
			Help: "Number of clients with a live token bucket",
		},
	)
)
