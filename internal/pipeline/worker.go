package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/forecast"
	"github.com/saai/forecast-backend/internal/metrics"
	"github.com/saai/forecast-backend/internal/queue"
	"github.com/saai/forecast-backend/internal/repository"
	"github.com/saai/forecast-backend/internal/service"
)

// Predictor is the slice of ForecastService the worker needs.
type Predictor interface {
	Predict(ctx context.Context, tenantID, productCode string) (*domain.Prediction, error)
}

// Worker consumes tenant jobs and runs the per-tenant prediction batch.
// Products are processed sequentially in enumeration order; one product's
// failure never aborts the rest of the tenant, and one tenant's failure
// never reaches another tenant's job.
type Worker struct {
	queue     queue.WorkQueue
	products  repository.ProductRepository
	predictor Predictor
}

func NewWorker(q queue.WorkQueue, products repository.ProductRepository, predictor Predictor) *Worker {
	return &Worker{queue: q, products: products, predictor: predictor}
}

// Run consumes jobs until the context is cancelled; cancellation is the
// normal shutdown path and returns nil. With once set it drains the queue
// and returns on the first empty poll.
func (w *Worker) Run(ctx context.Context, once bool) error {
	for {
		job, err := w.queue.Dequeue(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			if once {
				return nil
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("worker: shutting down")
				return nil
			}
			log.Error().Err(err).Msg("worker: dequeue failed")
			continue
		}

		stats, err := w.ProcessTenant(ctx, job.TenantID)
		if err != nil {
			log.Error().Err(err).Str("tenant", job.TenantID).Msg("worker: tenant batch failed")
			continue
		}
		log.Info().
			Str("tenant", stats.TenantID).
			Int("products", stats.TotalProducts).
			Int("seasonal", stats.Seasonal).
			Int("weighted_average", stats.WeightedAverage).
			Int("skipped", stats.Skipped).
			Int("failed", stats.Failed).
			Int("critical_alerts", stats.CriticalAlerts).
			Msg("worker: tenant batch completed")
	}
}

// ProcessTenant forecasts every active product of one tenant. Duplicate
// deliveries of the same tenant are harmless: recomputation is idempotent
// and prediction writes are last-write-wins.
func (w *Worker) ProcessTenant(ctx context.Context, tenantID string) (BatchStats, error) {
	start := time.Now()
	defer func() {
		metrics.TenantBatchDuration.Observe(time.Since(start).Seconds())
	}()

	stats := BatchStats{TenantID: tenantID}

	products, err := w.products.ListActive(ctx, tenantID)
	if err != nil {
		return stats, fmt.Errorf("list products for %s: %w", tenantID, err)
	}

	for _, product := range products {
		prediction, err := w.predictor.Predict(ctx, tenantID, product.Code)
		if err != nil {
			if errors.Is(err, service.ErrNoHistory) {
				stats.Skipped++
				continue
			}
			stats.Failed++
			metrics.ForecastFailures.Inc()
			log.Error().Err(err).Str("tenant", tenantID).Str("product", product.Code).
				Msg("worker: product skipped")
			continue
		}

		stats.TotalProducts++
		if prediction.Method == domain.MethodSeasonal {
			stats.Seasonal++
		} else {
			stats.WeightedAverage++
		}

		severity := forecast.Classify(prediction.StockSnapshot, prediction.DemandTomorrow, prediction.DemandNextWeek)
		if severity == forecast.SeverityCritical {
			stats.CriticalAlerts++
		}
	}

	return stats, nil
}
