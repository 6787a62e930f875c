package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// degradedQueries counts analytical reads that failed and were answered
	// with an empty result.
	degradedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_degraded_queries_total",
			Help: "Analytics queries that failed and returned an empty result",
		},
		[]string{"query"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Duration of analytics queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
)
