package mw

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"smart-orchard-backend/internal/metrics"
)

// Metrics observes request latency per route template and logs each request.
func Metrics(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HttpRequestLatencySeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		logger.Debug("http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", c.GetString(RequestIDKey),
		)
	}
}
