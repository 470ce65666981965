package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/repository"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO notifications (tenant_id, type, severity, product_code, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, n.TenantID, n.Type, n.Severity, n.ProductCode, n.Message, n.CreatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting notification for %s: %w", n.TenantID, err)
	}
	return nil
}

func (r *notificationRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, tenant_id, type, severity, product_code, message, created_at
		FROM notifications
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, tenantID, limit); err != nil {
		return nil, fmt.Errorf("error listing notifications for %s: %w", tenantID, err)
	}
	return notifications, nil
}
