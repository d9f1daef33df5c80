// Package simulation fabricates sensor readings in the absence of hardware.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/metrics"
	"smart-orchard-backend/internal/model"
)

// Appender is the write side of the sensor store.
type Appender interface {
	AppendReading(ctx context.Context, reading *model.SensorReading) error
}

// Sink receives every reading after it has been stored.
type Sink interface {
	Name() string
	Publish(ctx context.Context, reading model.SensorReading) error
}

// Generator appends one simulated reading per interval.
type Generator struct {
	readings Appender
	profile  Profile
	interval time.Duration
	rng      *rand.Rand
	sinks    []Sink
	log      *slog.Logger
}

// NewGenerator creates a generator from the simulation config. A zero seed
// seeds from the clock.
func NewGenerator(readings Appender, cfg config.SimulationConfig, logger *slog.Logger, sinks ...Sink) (*Generator, error) {
	profile, err := ProfileByName(cfg.Profile)
	if err != nil {
		return nil, err
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		readings: readings,
		profile:  profile,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		sinks:    sinks,
		log:      logger,
	}, nil
}

// GenerateOnce draws, stores and fans out a single reading. Only a storage
// failure is returned; sink failures are logged.
func (g *Generator) GenerateOnce(ctx context.Context) (model.SensorReading, error) {
	reading := g.profile.Draw(g.rng)
	if err := g.readings.AppendReading(ctx, &reading); err != nil {
		return reading, fmt.Errorf("generator: %w", err)
	}
	metrics.ReadingsGeneratedTotal.Inc()
	g.log.Debug("reading stored",
		"reading_id", reading.ID,
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"light", reading.Light,
	)

	for _, sink := range g.sinks {
		if err := sink.Publish(ctx, reading); err != nil {
			metrics.SinkErrorsTotal.WithLabelValues(sink.Name()).Inc()
			g.log.Warn("sink publish failed", "sink", sink.Name(), "reading_id", reading.ID, "err", err)
		}
	}
	return reading, nil
}

// Step adapts GenerateOnce to the periodic runner.
func (g *Generator) Step(ctx context.Context) error {
	_, err := g.GenerateOnce(ctx)
	return err
}

// Interval is the generation period.
func (g *Generator) Interval() time.Duration {
	return g.interval
}

// Run generates readings until ctx is done.
func (g *Generator) Run(ctx context.Context) {
	g.log.Info("starting sensor generator", "profile", g.profile.Name)
	Run(ctx, g.interval, g.log, "generator", g.Step)
}
