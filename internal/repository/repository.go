// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/saai/forecast-backend/internal/domain"
)

// SalesRepository reads immutable sales history. FetchSales returns an
// empty slice for a product with no sales; errors mean infrastructure
// failure only.
type SalesRepository interface {
	FetchSales(ctx context.Context, tenantID, productCode string, lookbackDays int) ([]domain.SalesRecord, error)
	// CountRecentSales returns, per product code, how many sales records
	// exist inside the window. Used to pick training candidates.
	CountRecentSales(ctx context.Context, tenantID string, windowDays int) (map[string]int, error)
}

// ProductRepository reads the product catalog and current stock.
type ProductRepository interface {
	ListActive(ctx context.Context, tenantID string) ([]domain.Product, error)
	Get(ctx context.Context, tenantID, code string) (*domain.Product, error)
}

// TenantRepository enumerates stores for the batch orchestrator.
type TenantRepository interface {
	ListActive(ctx context.Context) ([]domain.Tenant, error)
}

// PredictionRepository persists computed predictions. Upsert is
// last-write-wins on (tenant, product, forecast date).
type PredictionRepository interface {
	Upsert(ctx context.Context, p domain.Prediction) error
	Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, error)
	ListLive(ctx context.Context, tenantID string, now time.Time, limit int) ([]domain.Prediction, error)
}

// NotificationRepository records alerts for the tenant's inbox.
type NotificationRepository interface {
	Insert(ctx context.Context, n domain.Notification) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.Notification, error)
}
