package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/saai/forecast-backend/internal/domain"
)

const (
	decayFactor      = 0.9
	confidenceWindow = 30
)

// Result is the output of a forecast regardless of method.
type Result struct {
	DemandTomorrow int
	DemandNextWeek int
	Method         string
	Confidence     float64
}

// WeightedAverage is the fallback heuristic used when there is too little
// history to fit the seasonal model. It needs at least one record.
//
// Each record gets weight 0.9^i by recency (i=0 most recent). The weighted
// mean is scaled by a per-weekday seasonality factor, which defaults to 1.0
// for weekdays with no observations. That default is load-bearing: changing
// it changes forecast outputs for sparse products.
func WeightedAverage(records []domain.SalesRecord, today time.Time) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrInsufficientData
	}

	sorted := make([]domain.SalesRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	var weightedSum, weightTotal float64
	weight := 1.0
	for _, r := range sorted {
		weightedSum += float64(r.Quantity) * weight
		weightTotal += weight
		weight *= decayFactor
	}
	demandBase := weightedSum / weightTotal

	var factors [7]float64
	var sums, counts [7]float64
	for _, r := range sorted {
		d := int(r.Date.Weekday())
		sums[d] += float64(r.Quantity)
		counts[d]++
	}
	for d := 0; d < 7; d++ {
		if counts[d] == 0 || demandBase == 0 {
			factors[d] = 1.0
			continue
		}
		factors[d] = (sums[d] / counts[d]) / demandBase
	}

	tomorrow := int(today.AddDate(0, 0, 1).Weekday())
	demandTomorrow := demandBase * factors[tomorrow]

	var demandWeek float64
	for i := 1; i <= 7; i++ {
		d := int(today.AddDate(0, 0, i).Weekday())
		demandWeek += demandBase * factors[d]
	}

	confidence := math.Min(float64(len(records))/confidenceWindow, 1.0)

	return Result{
		DemandTomorrow: clampRound(demandTomorrow),
		DemandNextWeek: clampRound(demandWeek),
		Method:         domain.MethodWeightedAverage,
		Confidence:     confidence,
	}, nil
}

// clampRound rounds to the nearest integer and floors at zero.
func clampRound(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}
