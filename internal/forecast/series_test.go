package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saai/forecast-backend/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDailySeriesEmpty(t *testing.T) {
	assert.Nil(t, BuildDailySeries(nil))
	assert.Nil(t, BuildDailySeries([]domain.SalesRecord{}))
}

func TestBuildDailySeriesFillsGaps(t *testing.T) {
	records := []domain.SalesRecord{
		{Date: day(2026, 3, 1), Quantity: 4},
		{Date: day(2026, 3, 4), Quantity: 2},
	}

	series := BuildDailySeries(records)

	assert.Len(t, series, 4)
	assert.Equal(t, []float64{4, 0, 0, 2}, series.Values())
	assert.Equal(t, day(2026, 3, 2), series[1].Date)
}

func TestBuildDailySeriesSumsSameDay(t *testing.T) {
	records := []domain.SalesRecord{
		{Date: day(2026, 3, 1), Quantity: 4},
		{Date: day(2026, 3, 1), Quantity: 3},
		{Date: day(2026, 3, 2), Quantity: 1},
	}

	series := BuildDailySeries(records)

	assert.Equal(t, []float64{7, 1}, series.Values())
}

func TestBuildDailySeriesUnorderedInput(t *testing.T) {
	records := []domain.SalesRecord{
		{Date: day(2026, 3, 3), Quantity: 2},
		{Date: day(2026, 3, 1), Quantity: 5},
	}

	series := BuildDailySeries(records)

	assert.Equal(t, []float64{5, 0, 2}, series.Values())
}
