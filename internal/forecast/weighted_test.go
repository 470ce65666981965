package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saai/forecast-backend/internal/domain"
)

func constantHistory(end time.Time, days, qty int) []domain.SalesRecord {
	records := make([]domain.SalesRecord, 0, days)
	for i := days; i >= 1; i-- {
		records = append(records, domain.SalesRecord{
			Date:     end.AddDate(0, 0, -i),
			Quantity: qty,
		})
	}
	return records
}

func TestWeightedAverageEmptyInput(t *testing.T) {
	_, err := WeightedAverage(nil, day(2026, 3, 1))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestWeightedAverageConstantDemand(t *testing.T) {
	today := day(2026, 3, 15)
	records := constantHistory(today, 10, 3)

	res, err := WeightedAverage(records, today)
	require.NoError(t, err)

	assert.Equal(t, 3, res.DemandTomorrow)
	assert.Equal(t, 21, res.DemandNextWeek)
	assert.Equal(t, domain.MethodWeightedAverage, res.Method)
	assert.InDelta(t, 10.0/30.0, res.Confidence, 1e-9)
}

func TestWeightedAverageDeterministic(t *testing.T) {
	today := day(2026, 3, 15)
	records := []domain.SalesRecord{
		{Date: day(2026, 3, 10), Quantity: 7},
		{Date: day(2026, 3, 12), Quantity: 2},
		{Date: day(2026, 3, 14), Quantity: 5},
	}

	first, err := WeightedAverage(records, today)
	require.NoError(t, err)
	second, err := WeightedAverage(records, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWeightedAverageInputOrderIrrelevant(t *testing.T) {
	today := day(2026, 3, 15)
	records := []domain.SalesRecord{
		{Date: day(2026, 3, 10), Quantity: 7},
		{Date: day(2026, 3, 12), Quantity: 2},
		{Date: day(2026, 3, 14), Quantity: 5},
	}
	reversed := []domain.SalesRecord{records[2], records[1], records[0]}

	a, err := WeightedAverage(records, today)
	require.NoError(t, err)
	b, err := WeightedAverage(reversed, today)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestWeightedAverageConfidenceScalesWithHistory(t *testing.T) {
	today := day(2026, 3, 15)

	short, err := WeightedAverage(constantHistory(today, 3, 2), today)
	require.NoError(t, err)
	long, err := WeightedAverage(constantHistory(today, 20, 2), today)
	require.NoError(t, err)
	saturated, err := WeightedAverage(constantHistory(today, 45, 2), today)
	require.NoError(t, err)

	assert.Less(t, short.Confidence, long.Confidence)
	assert.Equal(t, 1.0, saturated.Confidence)
}

func TestWeightedAverageZeroDemand(t *testing.T) {
	today := day(2026, 3, 15)

	res, err := WeightedAverage(constantHistory(today, 10, 0), today)
	require.NoError(t, err)

	assert.Equal(t, 0, res.DemandTomorrow)
	assert.Equal(t, 0, res.DemandNextWeek)
}

func TestWeightedAverageSingleRecord(t *testing.T) {
	today := day(2026, 3, 15)
	records := []domain.SalesRecord{{Date: day(2026, 3, 14), Quantity: 10}}

	res, err := WeightedAverage(records, today)
	require.NoError(t, err)

	// One observation fixes the base at 10 and every uncovered weekday at
	// factor 1.0.
	assert.Equal(t, 10, res.DemandTomorrow)
	assert.Equal(t, 70, res.DemandNextWeek)
	assert.InDelta(t, 1.0/30.0, res.Confidence, 1e-9)
}
