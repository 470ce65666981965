package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saai/forecast-backend/internal/alerting"
	"github.com/saai/forecast-backend/internal/cache"
	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/forecast"
	"github.com/saai/forecast-backend/internal/metrics"
	"github.com/saai/forecast-backend/internal/repository"
	"github.com/saai/forecast-backend/internal/storage"
)

// ErrNoHistory marks a product that cannot be forecast at all: not even
// one sales record inside the lookback window.
var ErrNoHistory = errors.New("no sales history for product")

// ForecastService owns the cache-aside prediction path: cache lookup,
// model load or on-demand retrain, seasonal or weighted-average forecast,
// persistence, and alert evaluation. Failures are contained per product;
// nothing here aborts a sibling's work.
type ForecastService struct {
	sales         repository.SalesRepository
	products      repository.ProductRepository
	predictions   repository.PredictionRepository
	notifications repository.NotificationRepository
	cache         cache.PredictionCache
	models        *storage.ModelStore
	sink          alerting.AlertSink
	cfg           config.ForecastConfig
	now           func() time.Time
}

func NewForecastService(
	sales repository.SalesRepository,
	products repository.ProductRepository,
	predictions repository.PredictionRepository,
	notifications repository.NotificationRepository,
	predictionCache cache.PredictionCache,
	models *storage.ModelStore,
	sink alerting.AlertSink,
	cfg config.ForecastConfig,
) *ForecastService {
	if predictionCache == nil {
		predictionCache = cache.NewNoopPredictionCache()
	}
	if sink == nil {
		sink = alerting.NoopSink{}
	}
	return &ForecastService{
		sales:         sales,
		products:      products,
		predictions:   predictions,
		notifications: notifications,
		cache:         predictionCache,
		models:        models,
		sink:          sink,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Predict returns the live prediction for (tenant, product, today),
// computing and persisting it on cache miss. A cached entry is returned
// verbatim; sales recorded after it was cached do not invalidate it.
func (s *ForecastService) Predict(ctx context.Context, tenantID, productCode string) (*domain.Prediction, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	cached, ok, err := s.cache.Get(ctx, tenantID, productCode, today)
	switch {
	case err != nil:
		// A failed read is an infrastructure problem, not a miss.
		metrics.CacheErrors.Inc()
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: cache read failed")
	case ok:
		metrics.CacheHits.Inc()
		return cached, nil
	default:
		metrics.CacheMisses.Inc()
	}

	records, err := s.sales.FetchSales(ctx, tenantID, productCode, s.cfg.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch sales history: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHistory
	}

	result := s.computeResult(ctx, tenantID, productCode, records, today)
	metrics.ForecastsGenerated.WithLabelValues(result.Method).Inc()

	stock := s.currentStock(ctx, tenantID, productCode)

	prediction := domain.Prediction{
		TenantID:       tenantID,
		ProductCode:    productCode,
		ForecastDate:   today,
		DemandTomorrow: result.DemandTomorrow,
		DemandNextWeek: result.DemandNextWeek,
		Method:         result.Method,
		Confidence:     result.Confidence,
		StockSnapshot:  stock,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cache.TTL()),
	}

	if err := s.cache.Set(ctx, prediction); err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: cache write failed")
	}
	if err := s.predictions.Upsert(ctx, prediction); err != nil {
		metrics.ForecastFailures.Inc()
		log.Error().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: prediction persist failed")
	}

	s.raiseAlert(ctx, tenantID, productCode, stock, result, now)

	return &prediction, nil
}

// computeResult picks the method: enough history goes through the
// seasonal model (loading the stored artifact, retraining inline when it
// is missing or corrupt), everything else through the weighted average.
func (s *ForecastService) computeResult(ctx context.Context, tenantID, productCode string, records []domain.SalesRecord, today time.Time) forecast.Result {
	if len(records) >= s.cfg.MinTrainingRecords {
		if model := s.loadOrTrain(ctx, tenantID, productCode, records); model != nil {
			return forecast.SeasonalResult(model, s.cfg.HorizonDays)
		}
	}

	// WeightedAverage only fails on empty input, which Predict already
	// rejected.
	result, _ := forecast.WeightedAverage(records, today)
	return result
}

func (s *ForecastService) loadOrTrain(ctx context.Context, tenantID, productCode string, records []domain.SalesRecord) *forecast.HoltWinters {
	data, found, err := s.models.Load(ctx, tenantID, productCode)
	if err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: model load failed, retraining")
	} else if found {
		model, err := forecast.UnmarshalModel(data)
		if err == nil {
			return model
		}
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: stored model unusable, retraining")
	}

	trainer := forecast.Trainer{MinRecords: s.cfg.MinTrainingRecords, Period: s.cfg.SeasonalPeriod}
	model, err := trainer.Train(records)
	if err != nil {
		if !errors.Is(err, forecast.ErrInsufficientData) {
			log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
				Msg("forecast: on-demand training failed")
		}
		return nil
	}
	metrics.ModelsTrained.Inc()

	blob, err := model.Marshal()
	if err == nil {
		err = s.models.Save(ctx, tenantID, productCode, blob)
	}
	if err != nil {
		// Treat the product as untrained for this run rather than serving
		// a model the next run cannot reproduce.
		log.Error().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: model store failed")
		return nil
	}

	return model
}

func (s *ForecastService) currentStock(ctx context.Context, tenantID, productCode string) int {
	product, err := s.products.Get(ctx, tenantID, productCode)
	if err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: stock lookup failed")
		return 0
	}
	if product == nil {
		return 0
	}
	return product.Stock
}

// raiseAlert classifies stock vs demand and delivers the outcome: both
// severities are recorded in the tenant's inbox, only CRITICAL goes to
// the paging sink. Delivery failures are logged and never propagate.
func (s *ForecastService) raiseAlert(ctx context.Context, tenantID, productCode string, stock int, result forecast.Result, now time.Time) {
	alert, ok := forecast.BuildAlert(tenantID, productCode, stock, result, now)
	if !ok {
		return
	}
	metrics.AlertsPublished.WithLabelValues(alert.Severity).Inc()

	notification := domain.Notification{
		TenantID:    alert.TenantID,
		Type:        alert.Type,
		Severity:    alert.Severity,
		ProductCode: alert.ProductCode,
		Message:     alert.Message,
		CreatedAt:   now,
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: notification insert failed")
	}

	if alert.Severity != forecast.SeverityCritical {
		return
	}
	if err := s.sink.Publish(ctx, alert); err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Str("product", productCode).
			Msg("forecast: alert publish failed")
	}
}

// GetPrediction reads the persisted prediction for today without
// computing a new one. Returns nil when absent or expired.
func (s *ForecastService) GetPrediction(ctx context.Context, tenantID, productCode string) (*domain.Prediction, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	p, err := s.predictions.Get(ctx, tenantID, productCode, today)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Live(now) {
		return nil, nil
	}
	return p, nil
}

// ListPredictions returns live predictions for a tenant.
func (s *ForecastService) ListPredictions(ctx context.Context, tenantID string, limit int) ([]domain.Prediction, error) {
	return s.predictions.ListLive(ctx, tenantID, s.now(), limit)
}

// ListNotifications returns the tenant's alert inbox, newest first.
func (s *ForecastService) ListNotifications(ctx context.Context, tenantID string, limit int) ([]domain.Notification, error) {
	return s.notifications.ListByTenant(ctx, tenantID, limit)
}

// AlertPreview evaluates the alert classification for a stored prediction
// against the product's current stock, without touching the cache.
func (s *ForecastService) AlertPreview(ctx context.Context, tenantID, productCode string) (*domain.Alert, error) {
	p, err := s.GetPrediction(ctx, tenantID, productCode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	stock := s.currentStock(ctx, tenantID, productCode)
	result := forecast.Result{
		DemandTomorrow: p.DemandTomorrow,
		DemandNextWeek: p.DemandNextWeek,
		Method:         p.Method,
		Confidence:     p.Confidence,
	}

	alert, ok := forecast.BuildAlert(tenantID, productCode, stock, result, s.now())
	if !ok {
		alert = domain.Alert{
			Severity:       forecast.SeverityNone,
			TenantID:       tenantID,
			ProductCode:    productCode,
			Stock:          stock,
			DemandTomorrow: p.DemandTomorrow,
			DemandNextWeek: p.DemandNextWeek,
			CreatedAt:      s.now(),
		}
	}
	return &alert, nil
}
