// Package forecast extrapolates sensor signals a fixed number of steps ahead.
//
// Series with enough history are modelled by a gradient-boosted ensemble over a
// sliding window of past values and forecast recursively: each prediction is fed
// back as input for the next one, so model error compounds over the horizon.
// Shorter series fall back to a least-squares linear trend.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/metrics"
	"smart-orchard-backend/internal/model"
)

// Path identifies which method produced a forecast.
type Path string

const (
	PathEmpty   Path = "empty"
	PathLinear  Path = "linear"
	PathBoosted Path = "boosted"
)

// ReadingSource is the part of the sensor store the forecaster reads from.
type ReadingSource interface {
	RecentReadings(ctx context.Context, n int) ([]model.SensorReading, error)
}

// Params holds the forecasting parameters.
type Params struct {
	History      int
	MinHistory   int
	Horizon      int
	MinWindow    int
	MaxWindow    int
	Estimators   int
	MaxDepth     int
	LearningRate float64
	Seed         int64
}

// DefaultParams returns the standard forecasting parameters.
func DefaultParams() Params {
	return Params{
		History:      100,
		MinHistory:   8,
		Horizon:      30,
		MinWindow:    3,
		MaxWindow:    12,
		Estimators:   100,
		MaxDepth:     3,
		LearningRate: 0.1,
		Seed:         42,
	}
}

// ParamsFromConfig converts the forecast config section.
func ParamsFromConfig(cfg config.ForecastConfig) Params {
	return Params{
		History:      cfg.History,
		MinHistory:   cfg.MinHistory,
		Horizon:      cfg.Horizon,
		MinWindow:    cfg.MinWindow,
		MaxWindow:    cfg.MaxWindow,
		Estimators:   cfg.Estimators,
		MaxDepth:     cfg.MaxDepth,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
	}
}

// Forecaster produces forecasts from the most recent readings of a store.
type Forecaster struct {
	readings ReadingSource
	params   Params
	tracer   trace.Tracer
}

// New creates a Forecaster.
func New(readings ReadingSource, params Params) *Forecaster {
	return &Forecaster{
		readings: readings,
		params:   params,
		tracer:   otel.Tracer("smart-orchard/forecast"),
	}
}

// Forecast returns the next Horizon values of signal, or an empty slice when
// fewer than MinHistory readings exist. Storage and fitting errors are returned as is.
func (f *Forecaster) Forecast(ctx context.Context, signal Signal) ([]float64, error) {
	ctx, span := f.tracer.Start(ctx, "forecast.Forecast")
	defer span.End()
	span.SetAttributes(attribute.String("forecast.signal", string(signal)))

	readings, err := f.readings.RecentReadings(ctx, f.params.History)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return f.forecastSeries(span, signal, signal.Series(readings))
}

// ForecastAll forecasts every signal from a single read of the store.
func (f *Forecaster) ForecastAll(ctx context.Context) (map[Signal][]float64, error) {
	ctx, span := f.tracer.Start(ctx, "forecast.ForecastAll")
	defer span.End()

	readings, err := f.readings.RecentReadings(ctx, f.params.History)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make(map[Signal][]float64, len(Signals))
	for _, s := range Signals {
		values, err := f.forecastSeries(span, s, s.Series(readings))
		if err != nil {
			return nil, err
		}
		out[s] = values
	}
	return out, nil
}

func (f *Forecaster) forecastSeries(span trace.Span, signal Signal, y []float64) ([]float64, error) {
	start := time.Now()
	values, path, err := Series(y, f.params)
	metrics.ForecastDurationSeconds.WithLabelValues(string(signal), string(path)).Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.Int("forecast.history", len(y)),
		attribute.String("forecast.path."+string(signal), string(path)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("forecast %s: %w", signal, err)
	}
	return values, nil
}

// Series forecasts y, ordered oldest to newest, and reports which path was taken.
func Series(y []float64, p Params) ([]float64, Path, error) {
	if len(y) == 0 || len(y) < p.MinHistory {
		return []float64{}, PathEmpty, nil
	}

	w := WindowSize(len(y), p.MinWindow, p.MaxWindow)
	if len(y) < w+5 {
		return linearTrend(y, p.Horizon), PathLinear, nil
	}

	x, targets := windowed(y, w)
	gbr := NewGradientBoosting(BoostingParams{
		Estimators:   p.Estimators,
		MaxDepth:     p.MaxDepth,
		LearningRate: p.LearningRate,
		Seed:         p.Seed,
	})
	if err := gbr.Fit(x, targets); err != nil {
		return nil, PathBoosted, err
	}

	trailing := make([]float64, w, w+p.Horizon)
	copy(trailing, y[len(y)-w:])
	out := make([]float64, p.Horizon)
	for i := range out {
		next := gbr.Predict(trailing[len(trailing)-w:])
		out[i] = round2(next)
		trailing = append(trailing, next)
	}
	return out, PathBoosted, nil
}

// WindowSize is n/4 clamped to [lo, hi].
func WindowSize(n, lo, hi int) int {
	return min(hi, max(lo, n/4))
}

// windowed builds the supervised set: row i holds y[i-w:i] and targets y[i].
func windowed(y []float64, w int) ([][]float64, []float64) {
	x := make([][]float64, 0, len(y)-w)
	targets := make([]float64, 0, len(y)-w)
	for i := w; i < len(y); i++ {
		x = append(x, y[i-w:i])
		targets = append(targets, y[i])
	}
	return x, targets
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
