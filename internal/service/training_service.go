package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/forecast"
	"github.com/saai/forecast-backend/internal/metrics"
	"github.com/saai/forecast-backend/internal/repository"
	"github.com/saai/forecast-backend/internal/storage"
)

// TrainingService runs the scheduled model-training pass. Products with
// recent sales activity get a fresh seasonal model; everything else is
// left to train on demand at prediction time.
type TrainingService struct {
	sales  repository.SalesRepository
	models *storage.ModelStore
	cfg    config.ForecastConfig
}

func NewTrainingService(sales repository.SalesRepository, models *storage.ModelStore, cfg config.ForecastConfig) *TrainingService {
	return &TrainingService{sales: sales, models: models, cfg: cfg}
}

// TrainStats summarizes one tenant's training pass.
type TrainStats struct {
	Candidates int `json:"candidates"`
	Trained    int `json:"trained"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// TrainTenant trains models for every product of the tenant that had at
// least MinRecentSales sales inside the activity window. A product's
// failure is logged and counted, never fatal to the pass.
func (s *TrainingService) TrainTenant(ctx context.Context, tenantID string) (TrainStats, error) {
	var stats TrainStats

	counts, err := s.sales.CountRecentSales(ctx, tenantID, s.cfg.ActivityWindowDays)
	if err != nil {
		return stats, fmt.Errorf("list training candidates: %w", err)
	}

	trainer := forecast.Trainer{MinRecords: s.cfg.MinTrainingRecords, Period: s.cfg.SeasonalPeriod}

	for productCode, count := range counts {
		if count < s.cfg.MinRecentSales {
			stats.Skipped++
			continue
		}
		stats.Candidates++

		records, err := s.sales.FetchSales(ctx, tenantID, productCode, s.cfg.LookbackDays)
		if err != nil {
			stats.Failed++
			log.Error().Err(err).Str("tenant", tenantID).Str("product", productCode).
				Msg("training: fetch sales failed")
			continue
		}

		model, err := trainer.Train(records)
		if err != nil {
			if errors.Is(err, forecast.ErrInsufficientData) {
				stats.Skipped++
				continue
			}
			stats.Failed++
			log.Error().Err(err).Str("tenant", tenantID).Str("product", productCode).
				Msg("training: model fit failed")
			continue
		}

		blob, err := model.Marshal()
		if err == nil {
			err = s.models.Save(ctx, tenantID, productCode, blob)
		}
		if err != nil {
			stats.Failed++
			log.Error().Err(err).Str("tenant", tenantID).Str("product", productCode).
				Msg("training: model store failed")
			continue
		}

		stats.Trained++
		metrics.ModelsTrained.Inc()
	}

	return stats, nil
}
