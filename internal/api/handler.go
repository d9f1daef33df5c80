package api

import (
	"context"
	"log/slog"

	"github.com/SherClockHolmes/webpush-go"

	"smart-orchard-backend/internal/forecast"
	"smart-orchard-backend/internal/store"
)

// Forecaster is the forecasting surface used by the handlers.
type Forecaster interface {
	Forecast(ctx context.Context, signal forecast.Signal) ([]float64, error)
	ForecastAll(ctx context.Context) (map[forecast.Signal][]float64, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	forecaster Forecaster
	webpush    *webpush.Options
	history    int
	log        *slog.Logger
}

// NewHandler creates a new API handler. history is the number of readings
// returned by the dashboard.
func NewHandler(s store.Store, f Forecaster, webpushOptions *webpush.Options, history int, logger *slog.Logger) *Handler {
	if history <= 0 {
		history = 20
	}
	return &Handler{
		store:      s,
		forecaster: f,
		webpush:    webpushOptions,
		history:    history,
		log:        logger,
	}
}
