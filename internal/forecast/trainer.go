package forecast

import (
	"github.com/saai/forecast-backend/internal/domain"
)

// SeasonalConfidence is the fixed confidence reported for seasonal-model
// predictions. Weighted-average confidence scales with history instead.
const SeasonalConfidence = 0.92

// Trainer selects and fits the seasonal model. Products below MinRecords
// are rejected with ErrInsufficientData; the caller then uses
// WeightedAverage.
type Trainer struct {
	MinRecords int
	Period     int
}

// Train builds the gap-filled series and fits a Holt-Winters model on it.
func (t Trainer) Train(records []domain.SalesRecord) (*HoltWinters, error) {
	if len(records) < t.MinRecords {
		return nil, ErrInsufficientData
	}
	series := BuildDailySeries(records)
	if series == nil {
		return nil, ErrInsufficientData
	}
	return TrainHoltWinters(series, t.Period)
}

// SeasonalResult turns a model's daily forecast into the prediction pair:
// demand for tomorrow and the total over the next week.
func SeasonalResult(f Forecaster, horizon int) Result {
	daily := f.Forecast(horizon)

	var week float64
	for _, v := range daily {
		week += v
	}

	return Result{
		DemandTomorrow: clampRound(daily[0]),
		DemandNextWeek: clampRound(week),
		Method:         domain.MethodSeasonal,
		Confidence:     SeasonalConfidence,
	}
}
