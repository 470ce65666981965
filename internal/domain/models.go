// internal/domain/models.go
package domain

import "time"

// Tenant represents one retail store, the unit of data isolation.
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Tenant statuses as stored.
const (
	TenantActive    = "ACTIVE"
	TenantSuspended = "SUSPENDED"
	TenantDeleted   = "DELETED"
)

// Product is the catalog entry forecasting reads stock from.
type Product struct {
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Stock     int       `json:"stock" db:"stock"`
	Status    string    `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SalesRecord is an immutable historical fact: one product sold on one date.
type SalesRecord struct {
	Date        time.Time `json:"date" db:"sale_date"`
	Quantity    int       `json:"quantity" db:"quantity"`
	ProductCode string    `json:"product_code" db:"product_code"`
}

// Forecast method labels. The method field of a prediction always reflects
// the algorithm that produced the numbers.
const (
	MethodSeasonal        = "SEASONAL"
	MethodWeightedAverage = "WEIGHTED_AVERAGE"
)

// Prediction is the cached/persisted output of one forecast run for one
// product on one calendar date. Last write wins on (tenant, product, date).
type Prediction struct {
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	ProductCode    string    `json:"product_code" db:"product_code"`
	ForecastDate   time.Time `json:"forecast_date" db:"forecast_date"`
	DemandTomorrow int       `json:"demand_tomorrow" db:"demand_tomorrow"`
	DemandNextWeek int       `json:"demand_next_week" db:"demand_next_week"`
	Method         string    `json:"method" db:"method"`
	Confidence     float64   `json:"confidence" db:"confidence"`
	StockSnapshot  int       `json:"stock_snapshot" db:"stock_snapshot"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
}

// Live reports whether the prediction is still within its TTL at t.
func (p Prediction) Live(t time.Time) bool {
	return t.Before(p.ExpiresAt)
}

// Alert types as delivered to the notification channel.
const (
	AlertLowStockTomorrow = "low_stock_tomorrow"
	AlertLowStockWeek     = "low_stock_week"
)

// Alert is derived at read time from stock vs predicted demand. It is not
// stored as its own entity; CRITICAL alerts are forwarded to the sink,
// WARNING alerts are only recorded.
type Alert struct {
	Type           string    `json:"type"`
	Severity       string    `json:"severity"`
	TenantID       string    `json:"tenant_id"`
	ProductCode    string    `json:"product_code"`
	Stock          int       `json:"stock"`
	DemandTomorrow int       `json:"demand_tomorrow"`
	DemandNextWeek int       `json:"demand_next_week"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notification is the stored record of an alert for the tenant's inbox.
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	Type        string    `json:"type" db:"type"`
	Severity    string    `json:"severity" db:"severity"`
	ProductCode string    `json:"product_code" db:"product_code"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
