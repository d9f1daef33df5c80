package forecast

import (
	"errors"
	"fmt"

	"smart-orchard-backend/internal/model"
)

// ErrUnknownSignal is returned for a signal name outside temperature, humidity and light.
var ErrUnknownSignal = errors.New("unknown signal")

// Signal names one column of a sensor reading.
type Signal string

const (
	Temperature Signal = "temperature"
	Humidity    Signal = "humidity"
	Light       Signal = "light"
)

// Signals lists every forecastable signal.
var Signals = []Signal{Temperature, Humidity, Light}

// ParseSignal validates a signal name.
func ParseSignal(name string) (Signal, error) {
	switch s := Signal(name); s {
	case Temperature, Humidity, Light:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// Value extracts the signal from a reading.
func (s Signal) Value(r model.SensorReading) float64 {
	switch s {
	case Humidity:
		return r.Humidity
	case Light:
		return r.Light
	default:
		return r.Temperature
	}
}

// Series extracts the signal from readings, preserving order.
func (s Signal) Series(readings []model.SensorReading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = s.Value(r)
	}
	return out
}
