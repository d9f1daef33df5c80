package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"smart-orchard-backend/internal/model"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64
	Max float64
}

func (r Range) draw(rng *rand.Rand) float64 {
	v := r.Min + rng.Float64()*(r.Max-r.Min)
	return math.Round(v*100) / 100
}

// Profile holds independent sampling ranges for the three signals.
type Profile struct {
	Name        string
	Temperature Range
	Humidity    Range
	Light       Range
}

var (
	// Baseline wanders around a comfortable orchard climate.
	Baseline = Profile{
		Name:        "baseline",
		Temperature: Range{Min: 22, Max: 28},
		Humidity:    Range{Min: 50, Max: 70},
		Light:       Range{Min: 800, Max: 1200},
	}

	// Wide covers the full range a field sensor reports over a day.
	Wide = Profile{
		Name:        "wide",
		Temperature: Range{Min: 15, Max: 35},
		Humidity:    Range{Min: 30, Max: 90},
		Light:       Range{Min: 100, Max: 1000},
	}
)

// ProfileByName looks up one of the built-in profiles.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case Baseline.Name:
		return Baseline, nil
	case Wide.Name:
		return Wide, nil
	}
	return Profile{}, fmt.Errorf("unknown simulation profile %q", name)
}

// Draw samples one reading. The timestamp is left for the store to assign.
func (p Profile) Draw(rng *rand.Rand) model.SensorReading {
	return model.SensorReading{
		Temperature: p.Temperature.draw(rng),
		Humidity:    p.Humidity.draw(rng),
		Light:       p.Light.draw(rng),
	}
}
