package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Metrics(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	dashboard := []gin.HandlerFunc{h.GetDashboard}
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		dashboard = append([]gin.HandlerFunc{mw.Cache(cache.New(ttl, 2*ttl), ttl)}, dashboard...)
	}

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.GET("/data", dashboard...)
		api.GET("/advice", h.GetAdvice)

		api.GET("/readings", h.GetReadings)
		api.GET("/readings/latest", h.GetLatestReading)
		api.GET("/forecast/:signal", h.GetForecast)

		api.POST("/control", h.PostControl)
		api.GET("/commands/pending", h.GetPendingCommands)
		api.GET("/commands/latest", h.GetLatestCommand)
		api.GET("/commands/:id", h.GetCommand)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
