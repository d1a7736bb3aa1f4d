package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractgen_jobs_total",
			Help: "Total number of generation jobs by final status",
		},
		[]string{"status"},
	)

	ContractsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractgen_contracts_total",
			Help: "Total number of contracts processed by outcome",
		},
		[]string{"outcome"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contractgen_job_duration_seconds",
			Help:    "Duration of generation jobs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contractgen_jobs_active",
			Help: "Number of jobs currently running",
		},
	)

	JobsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contractgen_jobs_swept_total",
			Help: "Total number of jobs removed by retention",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contractgen_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractgen_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	Panics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contractgen_http_panics_total",
			Help: "Total number of handler panics recovered",
		},
	)
)
