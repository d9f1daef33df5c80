package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-orchard-backend/internal/advice"
	"smart-orchard-backend/internal/forecast"
)

type triple struct {
	Temp  float64 `json:"temp"`
	Hum   float64 `json:"hum"`
	Light float64 `json:"light"`
}

type predictions struct {
	Temp  []float64 `json:"temp"`
	Hum   []float64 `json:"hum"`
	Light []float64 `json:"light"`
}

type dashboardResponse struct {
	Current      triple                 `json:"current"`
	Weather      any                    `json:"weather"` // advice.WeatherSummary, or {} without readings
	Prediction   predictions            `json:"prediction"`
	HistoryTime  []string               `json:"history_time"`
	HistoryTemp  []float64              `json:"history_temp"`
	HistoryHum   []float64              `json:"history_hum"`
	HistoryLight []float64              `json:"history_light"`
}

// GetDashboard handles GET /api/data.
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	latest, err := h.store.LatestReading(ctx)
	if err != nil {
		h.internalError(c, "failed to load latest reading", err)
		return
	}
	forecasts, err := h.forecaster.ForecastAll(ctx)
	if err != nil {
		h.internalError(c, "failed to compute forecasts", err)
		return
	}
	history, err := h.store.RecentReadings(ctx, h.history)
	if err != nil {
		h.internalError(c, "failed to load history", err)
		return
	}

	resp := dashboardResponse{
		Prediction: predictions{
			Temp:  orEmpty(forecasts[forecast.Temperature]),
			Hum:   orEmpty(forecasts[forecast.Humidity]),
			Light: orEmpty(forecasts[forecast.Light]),
		},
		Weather:      struct{}{},
		HistoryTime:  make([]string, 0, len(history)),
		HistoryTemp:  make([]float64, 0, len(history)),
		HistoryHum:   make([]float64, 0, len(history)),
		HistoryLight: make([]float64, 0, len(history)),
	}
	if latest != nil {
		resp.Current = triple{Temp: latest.Temperature, Hum: latest.Humidity, Light: latest.Light}
		resp.Weather = advice.Weather(latest.Temperature, latest.Humidity, latest.Light)
	}
	for _, r := range history {
		resp.HistoryTime = append(resp.HistoryTime, r.Timestamp.Format("15:04:05"))
		resp.HistoryTemp = append(resp.HistoryTemp, r.Temperature)
		resp.HistoryHum = append(resp.HistoryHum, r.Humidity)
		resp.HistoryLight = append(resp.HistoryLight, r.Light)
	}

	c.JSON(http.StatusOK, resp)
}

// GetAdvice handles GET /api/advice.
func (h *Handler) GetAdvice(c *gin.Context) {
	latest, err := h.store.LatestReading(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to load latest reading", err)
		return
	}
	if latest == nil {
		c.JSON(http.StatusOK, gin.H{"advice": "insufficient data"})
		return
	}

	a := advice.ForReading(latest.Temperature, latest.Humidity)
	c.JSON(http.StatusOK, gin.H{
		"advice": a.Message,
		"level":  a.Level,
		"code":   a.Code,
	})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, "path", c.FullPath(), "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func orEmpty(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
