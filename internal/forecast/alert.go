package forecast

import (
	"fmt"
	"time"

	"github.com/saai/forecast-backend/internal/domain"
)

// Alert severities.
const (
	SeverityNone     = "NONE"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Classify compares current stock against predicted demand. It is a pure
// function of its inputs: no hysteresis, no debouncing.
func Classify(stock, demandTomorrow, demandNextWeek int) string {
	switch {
	case stock < demandTomorrow:
		return SeverityCritical
	case stock < demandNextWeek:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

// BuildAlert materializes the alert for a non-NONE classification. Returns
// false when stock covers both horizons.
func BuildAlert(tenantID, productCode string, stock int, res Result, now time.Time) (domain.Alert, bool) {
	severity := Classify(stock, res.DemandTomorrow, res.DemandNextWeek)
	if severity == SeverityNone {
		return domain.Alert{}, false
	}

	alert := domain.Alert{
		Severity:       severity,
		TenantID:       tenantID,
		ProductCode:    productCode,
		Stock:          stock,
		DemandTomorrow: res.DemandTomorrow,
		DemandNextWeek: res.DemandNextWeek,
		CreatedAt:      now,
	}

	if severity == SeverityCritical {
		alert.Type = domain.AlertLowStockTomorrow
		alert.Message = fmt.Sprintf("critical stock: %s has %d in stock against a predicted demand of %d tomorrow",
			productCode, stock, res.DemandTomorrow)
	} else {
		alert.Type = domain.AlertLowStockWeek
		alert.Message = fmt.Sprintf("stock for %s will not cover next week: %d in stock against a predicted demand of %d",
			productCode, stock, res.DemandNextWeek)
	}

	return alert, true
}
