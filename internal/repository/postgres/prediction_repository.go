package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/repository"
)

type predictionRepository struct {
	db *DB
}

func NewPredictionRepository(db *DB) repository.PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Upsert(ctx context.Context, p domain.Prediction) error {
	query := `
		INSERT INTO predictions
			(tenant_id, product_code, forecast_date, demand_tomorrow, demand_next_week,
			 method, confidence, stock_snapshot, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, product_code, forecast_date) DO UPDATE SET
			demand_tomorrow  = EXCLUDED.demand_tomorrow,
			demand_next_week = EXCLUDED.demand_next_week,
			method           = EXCLUDED.method,
			confidence       = EXCLUDED.confidence,
			stock_snapshot   = EXCLUDED.stock_snapshot,
			created_at       = EXCLUDED.created_at,
			expires_at       = EXCLUDED.expires_at
	`

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			p.TenantID, p.ProductCode, p.ForecastDate, p.DemandTomorrow, p.DemandNextWeek,
			p.Method, p.Confidence, p.StockSnapshot, p.CreatedAt, p.ExpiresAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("error upserting prediction %s/%s: %w", p.TenantID, p.ProductCode, err)
	}
	return nil
}

func (r *predictionRepository) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, error) {
	query := `
		SELECT tenant_id, product_code, forecast_date, demand_tomorrow, demand_next_week,
		       method, confidence, stock_snapshot, created_at, expires_at
		FROM predictions
		WHERE tenant_id = $1 AND product_code = $2 AND forecast_date = $3
	`

	var p domain.Prediction
	if err := r.db.GetContext(ctx, &p, query, tenantID, productCode, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting prediction %s/%s: %w", tenantID, productCode, err)
	}
	return &p, nil
}

func (r *predictionRepository) ListLive(ctx context.Context, tenantID string, now time.Time, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT tenant_id, product_code, forecast_date, demand_tomorrow, demand_next_week,
		       method, confidence, stock_snapshot, created_at, expires_at
		FROM predictions
		WHERE tenant_id = $1 AND expires_at > $2
		ORDER BY forecast_date DESC, product_code
		LIMIT $3
	`

	predictions := []domain.Prediction{}
	if err := r.db.SelectContext(ctx, &predictions, query, tenantID, now, limit); err != nil {
		return nil, fmt.Errorf("error listing predictions for %s: %w", tenantID, err)
	}
	return predictions, nil
}
