package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-orchard-backend/internal/model"
)

type fakeReadings struct {
	readings []model.SensorReading
	err      error
	asked    int
}

func (f *fakeReadings) RecentReadings(ctx context.Context, n int) ([]model.SensorReading, error) {
	f.asked = n
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.readings) {
		return f.readings[len(f.readings)-n:], nil
	}
	return f.readings, nil
}

func readingsFrom(temps []float64) []model.SensorReading {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.SensorReading, len(temps))
	for i, v := range temps {
		out[i] = model.SensorReading{
			ID:          int64(i + 1),
			Timestamp:   base.Add(time.Duration(i) * 5 * time.Second),
			Temperature: v,
			Humidity:    60 + v/10,
			Light:       1000 - v,
		}
	}
	return out
}

func seasonal(n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = 25 + 3*math.Sin(float64(i)/3) + 0.05*float64(i)
	}
	return y
}

func isRounded(v float64) bool {
	return math.Abs(v*100-math.Round(v*100)) < 1e-6
}

func TestSeries_ShortHistoryIsEmpty(t *testing.T) {
	for n := 0; n < 8; n++ {
		values, path, err := Series(seasonal(n), DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, values, "n=%d", n)
		assert.NotNil(t, values, "n=%d", n)
		assert.Equal(t, PathEmpty, path)
	}
}

func TestSeries_LinearFallback(t *testing.T) {
	p := DefaultParams()
	p.MinHistory = 4

	rising := []float64{1, 3, 5, 7, 9}
	values, path, err := Series(rising, p)
	require.NoError(t, err)
	assert.Equal(t, PathLinear, path)
	require.Len(t, values, 30)
	for i, v := range values {
		assert.InDelta(t, 2*float64(5+i)+1, v, 1e-9)
	}

	falling := []float64{30, 29.5, 29.2, 28.1, 27.7, 27.0, 26.4}
	values, path, err = Series(falling, p)
	require.NoError(t, err)
	assert.Equal(t, PathLinear, path)
	require.Len(t, values, 30)
	for i := 1; i < len(values); i++ {
		assert.LessOrEqual(t, values[i], values[i-1], "falling trend must not rise at step %d", i)
	}
}

func TestSeries_BoostedIsRoundedAndDeterministic(t *testing.T) {
	for _, n := range []int{8, 9, 20, 47, 100} {
		y := seasonal(n)
		first, path, err := Series(y, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, PathBoosted, path, "n=%d", n)
		require.Len(t, first, 30, "n=%d", n)
		for _, v := range first {
			assert.True(t, isRounded(v), "value %v is not rounded to 2 decimals", v)
			assert.False(t, math.IsNaN(v))
		}

		second, _, err := Series(y, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, first, second, "n=%d", n)
	}
}

func TestSeries_ConstantSeriesStaysConstant(t *testing.T) {
	y := make([]float64, 40)
	for i := range y {
		y[i] = 21.5
	}
	values, path, err := Series(y, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, PathBoosted, path)
	for _, v := range values {
		assert.Equal(t, 21.5, v)
	}
}

func TestSeries_NonFiniteInputFails(t *testing.T) {
	y := seasonal(20)
	y[10] = math.NaN()
	_, _, err := Series(y, DefaultParams())
	assert.Error(t, err)
}

func TestWindowSize(t *testing.T) {
	assert.Equal(t, 3, WindowSize(8, 3, 12))
	assert.Equal(t, 3, WindowSize(15, 3, 12))
	assert.Equal(t, 5, WindowSize(20, 3, 12))
	assert.Equal(t, 12, WindowSize(48, 3, 12))
	assert.Equal(t, 12, WindowSize(100, 3, 12))
}

func TestWindowed(t *testing.T) {
	x, targets := windowed([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, [][]float64{{1, 2, 3}, {2, 3, 4}}, x)
	assert.Equal(t, []float64{4, 5}, targets)
}

func TestForecaster_Forecast(t *testing.T) {
	src := &fakeReadings{readings: readingsFrom(seasonal(150))}
	f := New(src, DefaultParams())

	values, err := f.Forecast(context.Background(), Temperature)
	require.NoError(t, err)
	assert.Len(t, values, 30)
	assert.Equal(t, 100, src.asked, "forecaster reads the last 100 readings")

	want, _, err := Series(Temperature.Series(src.readings[50:]), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, want, values)
}

func TestForecaster_ForecastAll(t *testing.T) {
	src := &fakeReadings{readings: readingsFrom(seasonal(30))}
	f := New(src, DefaultParams())

	all, err := f.ForecastAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, s := range Signals {
		assert.Len(t, all[s], 30, "signal %s", s)
	}

	light, err := f.Forecast(context.Background(), Light)
	require.NoError(t, err)
	assert.Equal(t, light, all[Light])
}

func TestForecaster_NotEnoughData(t *testing.T) {
	f := New(&fakeReadings{readings: readingsFrom(seasonal(5))}, DefaultParams())
	values, err := f.Forecast(context.Background(), Humidity)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestForecaster_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("connection lost")
	f := New(&fakeReadings{err: boom}, DefaultParams())

	_, err := f.Forecast(context.Background(), Temperature)
	assert.ErrorIs(t, err, boom)

	_, err = f.ForecastAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestParseSignal(t *testing.T) {
	for _, name := range []string{"temperature", "humidity", "light"} {
		s, err := ParseSignal(name)
		require.NoError(t, err)
		assert.Equal(t, Signal(name), s)
	}
	_, err := ParseSignal("pressure")
	assert.ErrorIs(t, err, ErrUnknownSignal)
}

func TestSignal_Value(t *testing.T) {
	r := model.SensorReading{Temperature: 1, Humidity: 2, Light: 3}
	assert.Equal(t, 1.0, Temperature.Value(r))
	assert.Equal(t, 2.0, Humidity.Value(r))
	assert.Equal(t, 3.0, Light.Value(r))
}
