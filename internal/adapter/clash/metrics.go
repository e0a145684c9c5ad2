package clash

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legendtrack_upstream_requests_total",
			Help: "Total Clash API requests by result",
		},
		[]string{"result"},
	)

	upstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legendtrack_upstream_request_duration_seconds",
			Help:    "Clash API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
