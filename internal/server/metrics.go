package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackd_http_requests_total",
		Help: "Number of HTTP requests handled, by status code, method, and route.",
	}, []string{"code", "method", "route"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trackd_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}
