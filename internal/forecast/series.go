package forecast

import (
	"time"

	"github.com/saai/forecast-backend/internal/domain"
)

// DailyPoint is one calendar day of demand.
type DailyPoint struct {
	Date     time.Time
	Quantity float64
}

// DailySeries is a gap-filled daily demand series: one entry per calendar
// day between the first and last observed sale, days without sales at 0.
type DailySeries []DailyPoint

// Values returns the quantities in date order.
func (s DailySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Quantity
	}
	return out
}

// BuildDailySeries turns raw sales records into a DailySeries. Quantities
// of same-day records are summed. Returns nil for empty input; callers
// treat a nil series as insufficient data.
func BuildDailySeries(records []domain.SalesRecord) DailySeries {
	if len(records) == 0 {
		return nil
	}

	byDay := make(map[time.Time]float64, len(records))
	var first, last time.Time
	for i, r := range records {
		day := truncateDay(r.Date)
		byDay[day] += float64(r.Quantity)
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}

	days := int(last.Sub(first).Hours()/24) + 1
	series := make(DailySeries, 0, days)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, DailyPoint{Date: d, Quantity: byDay[d]})
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
