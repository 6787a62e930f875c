package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hdev_requests_total",
		Help: "Upstream requests by endpoint and HTTP status (\"error\" for transport failures)",
	}, []string{"endpoint", "status"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hdev_request_duration_seconds",
		Help:    "Upstream request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	upstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hdev_retries_total",
		Help: "Upstream retries by endpoint",
	}, []string{"endpoint"})

	upstreamThrottleWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hdev_throttle_wait_seconds",
		Help:    "Time spent waiting for the request spacing slot",
		Buckets: []float64{0, .05, .1, .25, .5, 1, 2, 5},
	})
)
