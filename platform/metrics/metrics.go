// Package metrics holds the Prometheus collectors exported on /metrics.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpportunityScores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opportunity_scores_total",
			Help: "Total number of opportunity scores computed, by urgency tier",
		},
		[]string{"tier"},
	)

	OpportunityBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opportunity_batch_duration_seconds",
			Help:    "Duration of batch opportunity scoring in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	RateAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_alerts_total",
			Help: "Total number of rate monitoring alerts raised",
		},
		[]string{"kind"},
	)

	MarketRateCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_rate_cache_total",
			Help: "Market rate cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_processed_total",
			Help: "Background jobs processed, by task type and outcome",
		},
		[]string{"task_type", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of background jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)
)
