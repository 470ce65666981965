package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/repository"
)

type salesRepository struct {
	db *sqlx.DB
}

func NewSalesRepository(db *sqlx.DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) FetchSales(ctx context.Context, tenantID, productCode string, lookbackDays int) ([]domain.SalesRecord, error) {
	query := `
		SELECT sale_date, quantity, product_code
		FROM sales
		WHERE tenant_id = $1
		  AND product_code = $2
		  AND sale_date >= CURRENT_DATE - $3 * INTERVAL '1 day'
		ORDER BY sale_date
	`

	records := []domain.SalesRecord{}
	if err := r.db.SelectContext(ctx, &records, query, tenantID, productCode, lookbackDays); err != nil {
		return nil, fmt.Errorf("error fetching sales for %s/%s: %w", tenantID, productCode, err)
	}
	return records, nil
}

func (r *salesRepository) CountRecentSales(ctx context.Context, tenantID string, windowDays int) (map[string]int, error) {
	query := `
		SELECT product_code, COUNT(*) AS count
		FROM sales
		WHERE tenant_id = $1
		  AND sale_date >= CURRENT_DATE - $2 * INTERVAL '1 day'
		GROUP BY product_code
	`

	rows := []struct {
		ProductCode string `db:"product_code"`
		Count       int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, windowDays); err != nil {
		return nil, fmt.Errorf("error counting recent sales for %s: %w", tenantID, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ProductCode] = row.Count
	}
	return counts, nil
}
