package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart-orchard-backend/internal/forecast"
)

const (
	defaultReadingsLimit = 20
	maxReadingsLimit     = 500
)

// GetLatestReading handles GET /api/readings/latest.
func (h *Handler) GetLatestReading(c *gin.Context) {
	latest, err := h.store.LatestReading(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to load latest reading", err)
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no readings yet"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

// GetReadings handles GET /api/readings?limit=n, oldest first.
func (h *Handler) GetReadings(c *gin.Context) {
	limit := defaultReadingsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReadingsLimit)
	}

	readings, err := h.store.RecentReadings(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "failed to load readings", err)
		return
	}
	c.JSON(http.StatusOK, readings)
}

// GetForecast handles GET /api/forecast/:signal.
func (h *Handler) GetForecast(c *gin.Context) {
	signal, err := forecast.ParseSignal(c.Param("signal"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	values, err := h.forecaster.Forecast(c.Request.Context(), signal)
	if err != nil {
		h.internalError(c, "failed to compute forecast", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal": signal, "values": orEmpty(values)})
}
