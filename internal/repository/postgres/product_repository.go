package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/repository"
)

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListActive(ctx context.Context, tenantID string) ([]domain.Product, error) {
	query := `
		SELECT tenant_id, code, name, stock, status, updated_at
		FROM products
		WHERE tenant_id = $1 AND status = 'ACTIVE'
		ORDER BY code
	`

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, tenantID); err != nil {
		return nil, fmt.Errorf("error listing products for %s: %w", tenantID, err)
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, tenantID, code string) (*domain.Product, error) {
	query := `
		SELECT tenant_id, code, name, stock, status, updated_at
		FROM products
		WHERE tenant_id = $1 AND code = $2
	`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, tenantID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting product %s/%s: %w", tenantID, code, err)
	}
	return &product, nil
}
