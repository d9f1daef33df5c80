// Command orchard-sim stands in for field hardware: it appends simulated
// readings and drains pending control commands on a single ticker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/db"
	"smart-orchard-backend/internal/executor"
	"smart-orchard-backend/internal/logging"
	"smart-orchard-backend/internal/publish"
	"smart-orchard-backend/internal/simulation"
	"smart-orchard-backend/internal/store"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "path to the configuration file")
	interval := flag.Duration("interval", 0, "tick period (default simulation.interval_seconds)")
	flag.Parse()

	intervalSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "interval" {
			intervalSet = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configPath, "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	cfg.Simulation = simulationSettings(cfg.Simulation, *interval, intervalSet)
	logger.Info("simulator configured", "profile", cfg.Simulation.Profile, "interval", cfg.Simulation.Interval.String())

	if err := run(cfg, logger); err != nil {
		logger.Error("orchard-sim exited with error", "err", err)
		os.Exit(1)
	}
}

// simulationSettings picks the wide profile unless the config names one, and
// applies the -interval flag only when it was passed.
func simulationSettings(sim config.SimulationConfig, interval time.Duration, intervalSet bool) config.SimulationConfig {
	if sim.ProfileDefaulted || sim.Profile == "" {
		sim.Profile = simulation.Wide.Name
	}
	if intervalSet && interval > 0 {
		sim.Interval = interval
		sim.IntervalSeconds = int(interval / time.Second)
	}
	return sim
}

func run(cfg *config.Config, logger *slog.Logger) error {
	interval := cfg.Simulation.Interval
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	var sinks []simulation.Sink
	if cfg.Kafka.Enabled {
		w, err := publish.NewKafkaWriter(cfg.Kafka)
		if err != nil {
			return err
		}
		kafkaSink := publish.NewKafkaSink(w)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}

	gen, err := simulation.NewGenerator(appStore, cfg.Simulation, logger, sinks...)
	if err != nil {
		return err
	}

	actuator, closeActuator, err := executor.NewActuator(cfg, logger)
	if err != nil {
		return err
	}
	defer closeActuator()
	exec := executor.New(appStore, actuator, interval, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	simulation.Run(ctx, interval, logger, "orchard-sim", gen.Step, exec.Step)
	return nil
}
