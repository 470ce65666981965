package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// Forecaster is the narrow contract over a trained model: future demand,
// one value per day.
type Forecaster interface {
	Forecast(horizon int) []float64
}

// HoltWinters is additive triple exponential smoothing with a weekly
// season. The struct is the serialized artifact stored per (tenant,
// product); it carries the fitted smoothing parameters and the final
// level/trend/seasonal state, which is all forecasting needs.
type HoltWinters struct {
	Alpha        float64   `json:"alpha"`
	Beta         float64   `json:"beta"`
	Gamma        float64   `json:"gamma"`
	Period       int       `json:"period"`
	Level        float64   `json:"level"`
	Trend        float64   `json:"trend"`
	Seasonal     []float64 `json:"seasonal"`
	Observations int       `json:"observations"`
	TrainedAt    time.Time `json:"trained_at"`
}

// TrainHoltWinters fits a model on a gap-filled daily series. The series
// must cover at least two full seasons; shorter input returns
// ErrInsufficientData so the caller can fall back to the weighted average.
// Smoothing parameters are fit by Nelder-Mead over the one-step SSE rather
// than a brute-force grid, keeping training in the low milliseconds.
func TrainHoltWinters(series DailySeries, period int) (*HoltWinters, error) {
	if period < 2 {
		return nil, fmt.Errorf("invalid seasonal period %d", period)
	}
	y := series.Values()
	if len(y) < 2*period {
		return nil, ErrInsufficientData
	}

	fit := func(x []float64) float64 {
		sse, _, _, _ := smooth(y, period, logistic(x[0]), logistic(x[1]), logistic(x[2]))
		return sse
	}

	// Start near the textbook defaults: responsive level, sluggish trend
	// and seasonality.
	x0 := []float64{logit(0.3), logit(0.05), logit(0.1)}
	alpha, beta, gamma := logistic(x0[0]), logistic(x0[1]), logistic(x0[2])

	result, err := optimize.Minimize(optimize.Problem{Func: fit}, x0, nil, &optimize.NelderMead{})
	if err == nil && result != nil && !math.IsNaN(result.F) {
		alpha = logistic(result.X[0])
		beta = logistic(result.X[1])
		gamma = logistic(result.X[2])
	}

	_, level, trend, ring := smooth(y, period, alpha, beta, gamma)

	// Reorder the seasonal ring into chronological order so Forecast can
	// index it by horizon.
	n := len(y)
	seasonal := make([]float64, period)
	for j := 0; j < period; j++ {
		seasonal[j] = ring[(n+j)%period]
	}

	return &HoltWinters{
		Alpha:        alpha,
		Beta:         beta,
		Gamma:        gamma,
		Period:       period,
		Level:        level,
		Trend:        trend,
		Seasonal:     seasonal,
		Observations: n,
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// Forecast projects demand for the next horizon days.
func (hw *HoltWinters) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		out[h-1] = hw.Level + float64(h)*hw.Trend + hw.Seasonal[(h-1)%hw.Period]
	}
	return out
}

// Marshal serializes the model for blob storage.
func (hw *HoltWinters) Marshal() ([]byte, error) {
	return json.Marshal(hw)
}

// UnmarshalModel decodes a stored model blob. A blob that decodes but has
// inconsistent state is reported as corrupt so the caller retrains.
func UnmarshalModel(data []byte) (*HoltWinters, error) {
	var hw HoltWinters
	if err := json.Unmarshal(data, &hw); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if hw.Period < 2 || len(hw.Seasonal) != hw.Period {
		return nil, fmt.Errorf("corrupt model: period %d with %d seasonal states", hw.Period, len(hw.Seasonal))
	}
	return &hw, nil
}

// smooth runs the additive Holt-Winters recursion over y and returns the
// one-step squared error plus the final state. Initialization follows the
// usual estimated scheme: level from the first season's mean, trend from
// the per-day difference of the first two seasons, seasonal offsets from
// the first season.
func smooth(y []float64, m int, alpha, beta, gamma float64) (sse, level, trend float64, seasonal []float64) {
	var mean1, mean2 float64
	for i := 0; i < m; i++ {
		mean1 += y[i]
		mean2 += y[m+i]
	}
	mean1 /= float64(m)
	mean2 /= float64(m)

	level = mean1
	trend = (mean2 - mean1) / float64(m)
	seasonal = make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = y[i] - mean1
	}

	for t := 0; t < len(y); t++ {
		idx := t % m
		pred := level + trend + seasonal[idx]
		diff := y[t] - pred
		sse += diff * diff

		prevLevel, prevTrend := level, trend
		level = alpha*(y[t]-seasonal[idx]) + (1-alpha)*(prevLevel+prevTrend)
		trend = beta*(level-prevLevel) + (1-beta)*prevTrend
		seasonal[idx] = gamma*(y[t]-prevLevel-prevTrend) + (1-gamma)*seasonal[idx]
	}
	return sse, level, trend, seasonal
}

func logistic(x float64) float64 {
	v := 1.0 / (1.0 + math.Exp(-x))
	return math.Min(math.Max(v, 1e-4), 1-1e-4)
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
