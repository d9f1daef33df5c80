package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/api"
	"smart-orchard-backend/internal/db"
	"smart-orchard-backend/internal/executor"
	"smart-orchard-backend/internal/forecast"
	"smart-orchard-backend/internal/logging"
	"smart-orchard-backend/internal/notification"
	"smart-orchard-backend/internal/publish"
	"smart-orchard-backend/internal/simulation"
	"smart-orchard-backend/internal/store"
	"smart-orchard-backend/internal/tracing"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", configPath, "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", configPath)

	if err := run(cfg, logger); err != nil {
		logger.Error("orchardd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "err", err)
		}
	}()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("database initialized", "driver", cfg.Database.Driver)

	appStore := store.NewGormStore(gormDB)

	var webpushOptions *webpush.Options
	var sinks []simulation.Sink
	if cfg.Push.Enabled() {
		webpushOptions = notification.NewWebPushOptions(cfg.Push)
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger)
		pool.Start(ctx)
		sinks = append(sinks, notification.NewAlertSink(pool))
	} else {
		logger.Warn("vapid keys are not configured; push alerts are disabled")
	}

	if cfg.Kafka.Enabled {
		w, err := publish.NewKafkaWriter(cfg.Kafka)
		if err != nil {
			return err
		}
		kafkaSink := publish.NewKafkaSink(w)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		logger.Info("publishing readings to kafka", "topic", cfg.Kafka.Topic)
	}

	if cfg.Simulation.Enabled {
		gen, err := simulation.NewGenerator(appStore, cfg.Simulation, logger, sinks...)
		if err != nil {
			return err
		}
		go gen.Run(ctx)
	}

	if cfg.Executor.Enabled {
		actuator, closeActuator, err := executor.NewActuator(cfg, logger)
		if err != nil {
			return err
		}
		defer closeActuator()
		go executor.New(appStore, actuator, cfg.Executor.Interval, logger).Run(ctx)
	}

	forecaster := forecast.New(appStore, forecast.ParamsFromConfig(cfg.Forecast))
	handler := api.NewHandler(appStore, forecaster, webpushOptions, cfg.Forecast.DashboardHistory, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg.Server, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping services")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("server gracefully stopped")
	return nil
}
