package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/repository"
)

type tenantRepository struct {
	db *sqlx.DB
}

func NewTenantRepository(db *sqlx.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	query := `
		SELECT id, name, status, created_at
		FROM tenants
		WHERE status = 'ACTIVE'
		ORDER BY id
	`

	tenants := []domain.Tenant{}
	if err := r.db.SelectContext(ctx, &tenants, query); err != nil {
		return nil, fmt.Errorf("error listing active tenants: %w", err)
	}
	return tenants, nil
}
