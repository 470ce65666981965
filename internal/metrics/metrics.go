package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ForecastsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saai_forecasts_generated_total",
		Help: "Total number of predictions computed, by method.",
	}, []string{"method"})

	ForecastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saai_forecast_failures_total",
		Help: "Total number of products skipped due to errors.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saai_prediction_cache_hits_total",
		Help: "Total number of prediction cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saai_prediction_cache_misses_total",
		Help: "Total number of prediction cache misses.",
	})

	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saai_prediction_cache_errors_total",
		Help: "Total number of failed prediction cache reads.",
	})

	AlertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saai_alerts_published_total",
		Help: "Total number of alerts raised, by severity.",
	}, []string{"severity"})

	ModelsTrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saai_models_trained_total",
		Help: "Total number of seasonal models trained.",
	})

	TenantBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saai_tenant_batch_duration_seconds",
		Help:    "Duration of a full per-tenant prediction batch.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
)
